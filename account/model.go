package account

import (
	"regexp"
	"sort"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

const (
	// maxMembers bounds the registry size so weight sums stay far from
	// overflow.
	maxMembers = 2000

	// maxWeight is the largest weight a single member can carry.
	maxWeight = 1<<16 - 1
)

// RoleGlobal is the reserved threshold table key for the global
// threshold.
const RoleGlobal = ""

var isRole = regexp.MustCompile(`^[a-z0-9_\-]{2,32}$`).MatchString

// Member is an authorized party of an account: an identity, a voting
// weight used for quorum accumulation, and an optional set of roles.
type Member struct {
	Address accord.Address `json:"address"`
	Weight  uint32         `json:"weight"`
	Roles   []string       `json:"roles,omitempty"`
}

// Validate returns an error if the member entry is invalid.
func (m Member) Validate() error {
	if err := m.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	switch {
	case m.Weight == 0:
		return errors.Wrap(errors.ErrInvalidInput, "weight must not be empty")
	case m.Weight > maxWeight:
		return errors.Wrap(errors.ErrInvalidInput, "weight must not be greater than max weight")
	}
	seen := make(map[string]struct{}, len(m.Roles))
	for _, role := range m.Roles {
		if !isRole(role) {
			return errors.Wrapf(errors.ErrInvalidInput, "role: %q", role)
		}
		if _, ok := seen[role]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "role: %q", role)
		}
		seen[role] = struct{}{}
	}
	return nil
}

// HasRole returns true if this member holds the given role.
func (m Member) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Threshold maps a role to the minimum cumulative approval weight
// required for proposals issued under that role. The RoleGlobal row is
// mandatory and applies whenever no role specific row matches.
type Threshold struct {
	Role   string `json:"role"`
	Weight uint64 `json:"weight"`
}

// Rules combine the member registry and the threshold table. They are
// always replaced together as one value: threshold validity can only be
// judged against the member set it is meant to gate.
type Rules struct {
	Members    []Member    `json:"members"`
	Thresholds []Threshold `json:"thresholds"`
}

// Validate checks internal consistency, including the reachability
// invariant: every role threshold must be reachable by the weight of the
// members holding that role, and the global threshold by the total
// registry weight.
func (r Rules) Validate() error {
	switch n := len(r.Members); {
	case n == 0:
		return errors.Wrap(errors.ErrInvalidModel, "no members")
	case n > maxMembers:
		return errors.Wrap(errors.ErrInvalidModel, "too many members")
	}
	seen := make(map[string]struct{}, len(r.Members))
	for _, m := range r.Members {
		if err := m.Validate(); err != nil {
			return errors.Wrap(err, "member")
		}
		key := string(m.Address)
		if _, ok := seen[key]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "member %s", m.Address)
		}
		seen[key] = struct{}{}
	}

	var global *Threshold
	roles := make(map[string]struct{}, len(r.Thresholds))
	for i, t := range r.Thresholds {
		if t.Role != RoleGlobal && !isRole(t.Role) {
			return errors.Wrapf(errors.ErrInvalidInput, "threshold role: %q", t.Role)
		}
		if _, ok := roles[t.Role]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "threshold role: %q", t.Role)
		}
		roles[t.Role] = struct{}{}
		if t.Weight == 0 {
			if t.Role == RoleGlobal {
				return errors.Wrap(ErrThresholdNull, "global")
			}
			return errors.Wrapf(errors.ErrInvalidInput, "zero threshold for role %q", t.Role)
		}
		if t.Role == RoleGlobal {
			global = &r.Thresholds[i]
		}
	}
	if global == nil {
		return errors.Wrap(ErrThresholdNull, "missing global threshold")
	}

	if total := r.TotalWeight(); total < global.Weight {
		return errors.Wrapf(ErrThresholdTooHigh, "global threshold %d, total weight %d", global.Weight, total)
	}
	for _, t := range r.Thresholds {
		if t.Role == RoleGlobal {
			continue
		}
		if rw := r.RoleWeight(t.Role); rw < t.Weight {
			return errors.Wrapf(ErrThresholdTooHigh, "role %q threshold %d, role weight %d", t.Role, t.Weight, rw)
		}
	}
	return nil
}

// Member returns the registry entry for the given address and an ok flag
// that is true when the address is a registered member.
func (r Rules) Member(a accord.Address) (*Member, bool) {
	for i := range r.Members {
		if r.Members[i].Address.Equals(a) {
			return &r.Members[i], true
		}
	}
	return nil, false
}

// Contains returns true if the address is a registered member.
func (r Rules) Contains(a accord.Address) bool {
	_, ok := r.Member(a)
	return ok
}

// WeightOf returns the current weight of the given member, zero if the
// address is not registered.
func (r Rules) WeightOf(a accord.Address) uint64 {
	if m, ok := r.Member(a); ok {
		return uint64(m.Weight)
	}
	return 0
}

// TotalWeight returns the sum of all member weights.
func (r Rules) TotalWeight() uint64 {
	var total uint64
	for _, m := range r.Members {
		total += uint64(m.Weight)
	}
	return total
}

// RoleWeight returns the sum of weights of all members holding the given
// role.
func (r Rules) RoleWeight(role string) uint64 {
	var total uint64
	for _, m := range r.Members {
		if m.HasRole(role) {
			total += uint64(m.Weight)
		}
	}
	return total
}

// HasThreshold returns true if a role specific threshold row exists.
func (r Rules) HasThreshold(role string) bool {
	for _, t := range r.Thresholds {
		if t.Role == role {
			return true
		}
	}
	return false
}

// RoleExists returns true if the role is known to the account, either
// through a threshold row or through a member holding it.
func (r Rules) RoleExists(role string) bool {
	if r.HasThreshold(role) {
		return true
	}
	for _, m := range r.Members {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

// RequiredWeightFor returns the role specific threshold if present, else
// the global threshold.
func (r Rules) RequiredWeightFor(role string) uint64 {
	if role != RoleGlobal {
		for _, t := range r.Thresholds {
			if t.Role == role {
				return t.Weight
			}
		}
	}
	for _, t := range r.Thresholds {
		if t.Role == RoleGlobal {
			return t.Weight
		}
	}
	// a validated rule set always has a global row
	return 0
}

// WithMembers returns a copy of the rules with the given members added.
// It fails with ErrDuplicate if any is already registered.
func (r Rules) WithMembers(add []Member) (Rules, error) {
	out := r.clone()
	for _, m := range add {
		if out.Contains(m.Address) {
			return Rules{}, errors.Wrapf(errors.ErrDuplicate, "already a member: %s", m.Address)
		}
		out.Members = append(out.Members, m)
	}
	sort.Slice(out.Members, func(i, j int) bool {
		return string(out.Members[i].Address) < string(out.Members[j].Address)
	})
	return out, nil
}

// WithoutMembers returns a copy of the rules with the given members
// removed. It fails with ErrNotMember if any is not registered.
func (r Rules) WithoutMembers(remove []accord.Address) (Rules, error) {
	out := r.clone()
	for _, a := range remove {
		found := false
		for i := range out.Members {
			if out.Members[i].Address.Equals(a) {
				out.Members = append(out.Members[:i], out.Members[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return Rules{}, errors.Wrapf(ErrNotMember, "%s", a)
		}
	}
	return out, nil
}

func (r Rules) clone() Rules {
	out := Rules{
		Members:    make([]Member, len(r.Members)),
		Thresholds: make([]Threshold, len(r.Thresholds)),
	}
	copy(out.Members, r.Members)
	copy(out.Thresholds, r.Thresholds)
	return out
}

var isDepName = regexp.MustCompile(`^[a-z0-9_\-]{2,32}$`).MatchString

// Dependency is an external action family package the account authorized
// to manage state attached to it: a human name, a package identity and
// the opted-in version. Version bumps are explicit, never automatic.
type Dependency struct {
	Name    string         `json:"name"`
	Pkg     accord.Address `json:"pkg"`
	Version uint32         `json:"version"`
}

// Validate returns an error if the dependency entry is invalid.
func (d Dependency) Validate() error {
	if !isDepName(d.Name) {
		return errors.Wrapf(errors.ErrInvalidInput, "dependency name: %q", d.Name)
	}
	if err := d.Pkg.Validate(); err != nil {
		return errors.Wrap(err, "pkg")
	}
	if d.Version < 1 {
		return errors.Wrap(errors.ErrInvalidInput, "version")
	}
	return nil
}

// Account is the shared, long lived resource: rules govern who may
// approve what, deps record which external packages were authorized.
// Proposals and managed assets are stored in sibling buckets keyed under
// the account address.
type Account struct {
	Metadata *accord.Metadata `json:"metadata"`
	Address  accord.Address   `json:"address"`
	Rules    Rules            `json:"rules"`
	Deps     []Dependency     `json:"deps,omitempty"`
}

// Validate returns an error if the account is in an invalid state.
func (a *Account) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := a.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if err := a.Rules.Validate(); err != nil {
		return errors.Wrap(err, "rules")
	}
	seen := make(map[string]struct{}, len(a.Deps))
	for _, d := range a.Deps {
		if err := d.Validate(); err != nil {
			return errors.Wrap(err, "dep")
		}
		if _, ok := seen[d.Name]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "dep %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// Dep returns the dependency entry with the given name, if present.
func (a *Account) Dep(name string) (*Dependency, bool) {
	for i := range a.Deps {
		if a.Deps[i].Name == name {
			return &a.Deps[i], true
		}
	}
	return nil, false
}
