// Package taxonomy holds the fixed, extensible vocabulary of activity
// verbs and object types. Every verb used by an activity must be
// registered here; unknown verbs are a configuration error.
package taxonomy

import (
	"github.com/studyhall/stream/internal/domain"
)

// Canonical verb URIs.
const (
	VerbPost   string = "http://activitystrea.ms/schema/1.0/post"
	VerbFollow string = "http://activitystrea.ms/schema/1.0/follow"
	VerbUpdate string = "http://activitystrea.ms/schema/1.0/update"
	VerbCreate string = "http://activitystrea.ms/schema/1.0/create"
	VerbJoin   string = "http://activitystrea.ms/schema/1.0/join"
	VerbShare  string = "http://activitystrea.ms/schema/1.0/share"
)

// Canonical object-type URIs.
const (
	ObjectStatus       string = "http://activitystrea.ms/schema/1.0/status"
	ObjectPerson       string = "http://activitystrea.ms/schema/1.0/person"
	ObjectGroup        string = "http://activitystrea.ms/schema/1.0/group"
	ObjectProject      string = "https://schema.studyhall.dev/object/project.json"
	ObjectPage         string = "https://schema.studyhall.dev/object/page.json"
	ObjectRemoteObject string = "https://schema.studyhall.dev/object/remote.json"
)

var pastTense = map[string]string{
	VerbPost:   "posted",
	VerbFollow: "started following",
	VerbUpdate: "updated",
	VerbCreate: "created",
	VerbJoin:   "joined",
	VerbShare:  "shared",
}

var objectTypes = map[domain.ObjectKind]string{
	domain.KindStatus:       ObjectStatus,
	domain.KindUser:         ObjectPerson,
	domain.KindProject:      ObjectProject,
	domain.KindPage:         ObjectPage,
	domain.KindRemoteObject: ObjectRemoteObject,
}

// Known reports whether the verb is registered.
func Known(verb string) bool {
	_, ok := pastTense[verb]
	return ok
}

// Label returns the default past-tense label for a verb.
func Label(verb string) (string, error) {
	label, ok := pastTense[verb]
	if !ok {
		return "", domain.UnknownVerbError{Verb: verb}
	}
	return label, nil
}

// ObjectType returns the canonical type URI for an object kind.
func ObjectType(kind domain.ObjectKind) (string, error) {
	uri, ok := objectTypes[kind]
	if !ok {
		return "", domain.TargetNotFoundError{Target: domain.Target{Kind: kind}}
	}
	return uri, nil
}

// FriendlyVerb returns the phrasing a target's resolver prefers for a
// verb, falling back to the taxonomy label. The resolver may be nil.
func FriendlyVerb(verb string, resolver domain.TargetResolver) (string, error) {
	if overrider, ok := resolver.(domain.FriendlyVerbResolver); ok {
		if label, ok := overrider.FriendlyVerb(verb); ok {
			return label, nil
		}
	}
	return Label(verb)
}
