package account

import (
	"regexp"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

// Family is the witness a pluggable action family presents to the
// engine. Each family declares an unexported type implementing this
// interface, so the path a proposal was issued under can be matched
// against the code that tries to execute it.
type Family interface {
	// FamilyPath returns the stable identifier of this family, e.g.
	// "currency". It must match the first section of the family's
	// registered action routes.
	FamilyPath() string
}

var isFamilyPath = regexp.MustCompile(`^[a-z0-9_\-]{3,10}$`).MatchString

// Issuer records which action family created a proposal and under which
// role. It selects the threshold bucket at execution time and gates
// which family may drive the resulting executable.
type Issuer struct {
	Family string `json:"family"`
	Role   string `json:"role,omitempty"`
}

// Validate returns an error if the issuer record is malformed.
func (i Issuer) Validate() error {
	if !isFamilyPath(i.Family) {
		return errors.Wrapf(errors.ErrInvalidInput, "issuer family: %q", i.Family)
	}
	if i.Role != RoleGlobal && !isRole(i.Role) {
		return errors.Wrapf(errors.ErrInvalidInput, "issuer role: %q", i.Role)
	}
	return nil
}

// Auth is an ephemeral proof that a call originates from a verified
// member of a specific account, optionally scoped to a role. It is
// produced by Authenticate and consumed by exactly one proposal
// creation. All fields are unexported and there is no other constructor,
// so an Auth can neither be persisted nor replayed.
type Auth struct {
	account accord.Address
	member  accord.Address
	role    string
	used    bool
}

// Authenticate verifies that the context sender is a registered member
// of the account and, if a role is given, that the sender holds it. The
// returned token is single use.
func Authenticate(ctx accord.Context, acct *Account, role string) (*Auth, error) {
	sender, ok := accord.Sender(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "sender not set")
	}
	member, ok := acct.Rules.Member(sender)
	if !ok {
		return nil, errors.Wrapf(ErrNotMember, "%s", sender)
	}
	if role != RoleGlobal {
		if !acct.Rules.RoleExists(role) {
			return nil, errors.Wrapf(ErrNoSuchRole, "%q", role)
		}
		if !member.HasRole(role) {
			return nil, errors.Wrapf(ErrInsufficientRole, "%q", role)
		}
	}
	return &Auth{
		account: acct.Address,
		member:  sender,
		role:    role,
	}, nil
}

// Member returns the authenticated member identity.
func (a *Auth) Member() accord.Address {
	return a.member
}

// Role returns the role this auth is scoped to, RoleGlobal if none.
func (a *Auth) Role() string {
	return a.role
}

// consume marks the token used after verifying it was issued for the
// given account. A second consumption fails, which is what prevents one
// authentication from covering more than one privileged call.
func (a *Auth) consume(account accord.Address) error {
	if a == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing auth")
	}
	if a.used {
		return errors.Wrap(errors.ErrInvalidState, "auth already consumed")
	}
	if !a.account.Equals(account) {
		return errors.Wrapf(ErrWrongAccount, "auth for %s", a.account)
	}
	a.used = true
	return nil
}

// coreFamilies are the privileged families allowed to mutate core
// account state directly, outside the proposal flow, for bookkeeping
// operations only.
var coreFamilies = map[string]bool{}

// RegisterCoreFamily marks a family as privileged. Call this from an
// init function; it panics on reuse and on malformed paths.
func RegisterCoreFamily(w Family) {
	path := w.FamilyPath()
	if !isFamilyPath(path) {
		panic("illegal family path: " + path)
	}
	if coreFamilies[path] {
		panic("core family already registered: " + path)
	}
	coreFamilies[path] = true
}

// AssertCoreDep fails with ErrNotCoreDependency unless the witness
// belongs to one of the registered core families.
func AssertCoreDep(w Family) error {
	if w == nil || !coreFamilies[w.FamilyPath()] {
		return errors.Wrap(ErrNotCoreDependency, familyPath(w))
	}
	return nil
}

func familyPath(w Family) string {
	if w == nil {
		return "(none)"
	}
	return w.FamilyPath()
}
