// Package policy decides edit/reply permissions by combining small
// allow/deny rules. A DENY always wins over an ALLOW; rules that do not
// apply stay UNSET and fall through to the default.
package policy

import "context"

type Decision int

const (
	UNSET Decision = iota
	ALLOW
	DENY
)

// Or combines two decisions. Contradicting decisions cancel out.
func (d Decision) Or(other Decision) Decision {
	if d == UNSET {
		return other
	}
	if other == UNSET {
		return d
	}
	if (d == DENY && other == ALLOW) || (d == ALLOW && other == DENY) {
		return UNSET
	}
	if d == DENY || other == DENY {
		return DENY
	}
	return ALLOW
}

// Rule is a single permission predicate.
type Rule func(ctx context.Context) (Decision, error)

// Evaluate folds rules in order. The first DENY short-circuits; an
// ALLOW wins unless a later rule denies; UNSET throughout yields the
// default.
func Evaluate(ctx context.Context, defaultAllow bool, rules ...Rule) (bool, error) {
	result := UNSET
	for _, rule := range rules {
		decision, err := rule(ctx)
		if err != nil {
			return false, err
		}
		if decision == DENY {
			return false, nil
		}
		result = result.Or(decision)
	}
	if result == UNSET {
		return defaultAllow, nil
	}
	return result == ALLOW, nil
}

// Author allows when the acting user authored the record.
func Author(actorID, authorID int64) Rule {
	return func(ctx context.Context) (Decision, error) {
		if actorID == authorID {
			return ALLOW, nil
		}
		return UNSET, nil
	}
}

// Participant delegates to a membership check and decides both ways:
// scoped records are repliable exactly by scope participants.
func Participant(check func(ctx context.Context) (bool, error)) Rule {
	return func(ctx context.Context) (Decision, error) {
		ok, err := check(ctx)
		if err != nil {
			return UNSET, err
		}
		if ok {
			return ALLOW, nil
		}
		return DENY, nil
	}
}

// Follower allows when the follow check holds, stays unset otherwise.
func Follower(check func(ctx context.Context) (bool, error)) Rule {
	return func(ctx context.Context) (Decision, error) {
		ok, err := check(ctx)
		if err != nil {
			return UNSET, err
		}
		if ok {
			return ALLOW, nil
		}
		return UNSET, nil
	}
}
