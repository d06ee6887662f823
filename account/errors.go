package account

import "github.com/accord-ledger/accord/errors"

// Error codes 1100-1115 are reserved for the account engine.
var (
	// ErrNotMember is returned when the caller is not in the account's
	// member registry.
	ErrNotMember = errors.Register(1100, "not a member")

	// ErrWrongAccount is returned when an auth token is presented to a
	// different account than it was constructed against.
	ErrWrongAccount = errors.Register(1101, "auth for wrong account")

	// ErrWrongIssuer is returned when the executing family does not
	// match the family that issued the proposal.
	ErrWrongIssuer = errors.Register(1102, "wrong issuer family")

	// ErrInsufficientRole is returned when the caller does not hold
	// the role an operation is scoped to.
	ErrInsufficientRole = errors.Register(1103, "member does not hold role")

	// ErrNoSuchRole is returned when a role is not known to the
	// account.
	ErrNoSuchRole = errors.Register(1104, "role does not exist")

	// ErrProposalExists is returned when a proposal key collides with
	// an open proposal.
	ErrProposalExists = errors.Register(1105, "proposal key already exists")

	// ErrProposalNotEmpty is returned when deleting a proposal that
	// still has approvals.
	ErrProposalNotEmpty = errors.Register(1106, "proposal has approvals")

	// ErrThresholdNotReached is returned when the accumulated approval
	// weight is below the required threshold.
	ErrThresholdNotReached = errors.Register(1107, "approval threshold not reached")

	// ErrThresholdTooHigh is returned when a threshold cannot be
	// reached by the member set it applies to.
	ErrThresholdTooHigh = errors.Register(1108, "threshold exceeds member weight")

	// ErrThresholdNull is returned when the global threshold is
	// missing or zero.
	ErrThresholdNull = errors.Register(1109, "global threshold must be positive")

	// ErrTooEarly is returned when executing a proposal before its
	// earliest execution time.
	ErrTooEarly = errors.Register(1110, "execution time not reached")

	// ErrWrongActionType is returned by family helpers when the
	// current action is not of the declared type.
	ErrWrongActionType = errors.Register(1111, "wrong action type")

	// ErrActionsRemaining is returned when terminating an executable
	// that still holds unprocessed or uncleaned actions.
	ErrActionsRemaining = errors.Register(1112, "actions remaining")

	// ErrNotExecuted is returned when an action is cleaned up before
	// its side effect was applied.
	ErrNotExecuted = errors.Register(1113, "action not executed")

	// ErrNotCoreDependency is returned when a non-core family attempts
	// a privileged account mutation.
	ErrNotCoreDependency = errors.Register(1114, "not a core dependency")

	// ErrNotAllowed is returned when a dependency is not present in
	// the extensions allow-list, or a family touches a managed asset
	// area it is not authorized for.
	ErrNotAllowed = errors.Register(1115, "dependency not allowed")
)
