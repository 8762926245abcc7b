package verdict

import "errors"

var (
	// ErrAccessDenied is returned when an authorization check fails.
	ErrAccessDenied = errors.New("verdict: access denied")

	// ErrPolicyNotFound is returned when a policy cannot be found.
	ErrPolicyNotFound = errors.New("verdict: policy not found")

	// ErrGrantNotFound is returned when an affiliation grant cannot be found.
	ErrGrantNotFound = errors.New("verdict: grant not found")

	// ErrGroupNotFound is returned when a principal group cannot be found.
	ErrGroupNotFound = errors.New("verdict: principal group not found")

	// ErrAffiliationNotFound is returned when an affiliation cannot be found.
	ErrAffiliationNotFound = errors.New("verdict: affiliation not found")

	// ErrDecisionLogNotFound is returned when a decision log entry cannot be found.
	ErrDecisionLogNotFound = errors.New("verdict: decision log entry not found")

	// ErrAffiliationInactive is returned when a grant references an
	// affiliation that is no longer active. Grants have no existence
	// beyond the affiliation that authorized them.
	ErrAffiliationInactive = errors.New("verdict: affiliation is not active")

	// ErrSystemPolicyImmutable is returned when trying to modify a system policy.
	ErrSystemPolicyImmutable = errors.New("verdict: system policy cannot be modified")

	// ErrDuplicateGrant is returned when an identical grant already exists.
	ErrDuplicateGrant = errors.New("verdict: grant already exists")

	// ErrDefaultGroupExists is returned when an account already has a
	// default principal group.
	ErrDefaultGroupExists = errors.New("verdict: account already has a default group")

	// ErrInvalidStatement is returned when a statement references an
	// unknown action, resource type, or role tag. Configuration errors
	// are fatal: evaluation stops rather than silently coercing.
	ErrInvalidStatement = errors.New("verdict: invalid policy statement")

	// ErrInvalidCondition is returned when a condition clause is
	// malformed: unknown key or operator, or an operator incompatible
	// with the shape of its key.
	ErrInvalidCondition = errors.New("verdict: invalid policy condition")
)
