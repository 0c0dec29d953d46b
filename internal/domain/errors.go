package domain

import "fmt"

// SelfReferenceError reports an attempt to create a follow edge whose
// target equals its source.
type SelfReferenceError struct {
	ActorID int64
}

func (e SelfReferenceError) Error() string {
	return fmt.Sprintf("actor %d cannot follow itself", e.ActorID)
}

// Is enables errors.Is matching on SelfReferenceError.
func (e SelfReferenceError) Is(target error) bool {
	_, ok := target.(SelfReferenceError)
	if ok {
		return true
	}
	_, ok = target.(*SelfReferenceError)
	return ok
}

// ErrSelfReference is the sentinel for errors.Is matching.
var ErrSelfReference = SelfReferenceError{}

// UnknownVerbError reports a verb missing from the taxonomy. This is a
// configuration error, not a runtime state.
type UnknownVerbError struct {
	Verb string
}

func (e UnknownVerbError) Error() string {
	if e.Verb == "" {
		return "unknown verb"
	}
	return fmt.Sprintf("unknown verb %s", e.Verb)
}

func (e UnknownVerbError) Is(target error) bool {
	_, ok := target.(UnknownVerbError)
	if ok {
		return true
	}
	_, ok = target.(*UnknownVerbError)
	return ok
}

var ErrUnknownVerb = UnknownVerbError{}

// TargetNotFoundError reports a dangling polymorphic reference.
type TargetNotFoundError struct {
	Target Target
}

func (e TargetNotFoundError) Error() string {
	if e.Target.Kind == "" {
		return "target not found"
	}
	return fmt.Sprintf("%s %d not found", e.Target.Kind, e.Target.ID)
}

func (e TargetNotFoundError) Is(target error) bool {
	_, ok := target.(TargetNotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*TargetNotFoundError)
	return ok
}

var ErrTargetNotFound = TargetNotFoundError{}

// PermissionDeniedError reports a canEdit/canReply contract violation.
type PermissionDeniedError struct {
	ActorID int64
	Op      string
}

func (e PermissionDeniedError) Error() string {
	if e.Op == "" {
		return "permission denied"
	}
	return fmt.Sprintf("actor %d may not %s", e.ActorID, e.Op)
}

func (e PermissionDeniedError) Is(target error) bool {
	_, ok := target.(PermissionDeniedError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionDeniedError)
	return ok
}

var ErrPermissionDenied = PermissionDeniedError{}

// PageNotFoundError reports an out-of-range pagination request.
type PageNotFoundError struct {
	Page       int
	TotalPages int
}

func (e PageNotFoundError) Error() string {
	return fmt.Sprintf("page %d of %d not found", e.Page, e.TotalPages)
}

func (e PageNotFoundError) Is(target error) bool {
	_, ok := target.(PageNotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*PageNotFoundError)
	return ok
}

var ErrPageNotFound = PageNotFoundError{}

// QueryTimeoutError reports a feed query that exceeded the caller's
// deadline. Nothing partial is returned alongside it.
type QueryTimeoutError struct{}

func (e QueryTimeoutError) Error() string {
	return "query deadline exceeded"
}

func (e QueryTimeoutError) Is(target error) bool {
	_, ok := target.(QueryTimeoutError)
	if ok {
		return true
	}
	_, ok = target.(*QueryTimeoutError)
	return ok
}

var ErrQueryTimeout = QueryTimeoutError{}

// ConflictError reports a concurrent duplicate write detected by the
// storage layer. Callers inside the core treat it as idempotent success.
type ConflictError struct{}

func (e ConflictError) Error() string {
	return "conflicting concurrent write"
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

// ValidationError reports malformed input (empty content, unsupported
// follow target, cross-page reply).
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// NotFoundError represents a missing record (activity, comment, edge).
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

var ErrNotFound = NotFoundError{}
