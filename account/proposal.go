package account

import (
	"regexp"
	"sort"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

// IsProposalKey is the RegExp every proposal key must match. Keys are
// human chosen and unique among the open proposals of an account.
var IsProposalKey = regexp.MustCompile(`^[a-z0-9._\-]{3,64}$`).MatchString

const (
	maxTitleLength       = 128
	maxDescriptionLength = 5000
)

// Proposal is a named bundle of actions awaiting quorum approval.
// Approvals hold member identities only; weight is recomputed from the
// live member registry at execution time, never snapshotted.
type Proposal struct {
	Metadata *accord.Metadata `json:"metadata"`
	Account  accord.Address   `json:"account"`
	// Seq is assigned from the engine's proposal sequence at creation
	// and strictly increases across all accounts.
	Seq          int64              `json:"seq"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Issuer       Issuer             `json:"issuer"`
	Actions      []Action           `json:"actions"`
	Approvals    []accord.Address   `json:"approvals,omitempty"`
	SubmittedAt  accord.UnixTime    `json:"submitted_at"`
	ExecuteAfter accord.UnixTime    `json:"execute_after"`
	ExpiresAt    accord.EpochHeight `json:"expires_at"`
}

// Validate returns an error if the proposal is in an invalid state.
func (p *Proposal) Validate() error {
	if err := p.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := p.Account.Validate(); err != nil {
		return errors.Wrap(err, "account")
	}
	if err := p.Issuer.Validate(); err != nil {
		return errors.Wrap(err, "issuer")
	}
	switch {
	case p.Seq < 1:
		return errors.Wrap(errors.ErrInvalidInput, "sequence not assigned")
	case len(p.Title) == 0:
		return errors.Wrap(errors.ErrEmpty, "title")
	case len(p.Title) > maxTitleLength:
		return errors.Wrapf(errors.ErrInvalidInput, "title length exceeds: %d", maxTitleLength)
	case len(p.Description) > maxDescriptionLength:
		return errors.Wrapf(errors.ErrInvalidInput, "description length exceeds: %d", maxDescriptionLength)
	case len(p.Actions) == 0:
		return errors.Wrap(errors.ErrEmpty, "actions")
	}
	if err := p.ExpiresAt.Validate(); err != nil {
		return errors.Wrap(err, "expiration epoch")
	}
	if err := p.SubmittedAt.Validate(); err != nil {
		return errors.Wrap(err, "submitted at")
	}
	if err := p.ExecuteAfter.Validate(); err != nil {
		return errors.Wrap(err, "execute after")
	}
	for _, act := range p.Actions {
		if act == nil {
			return errors.Wrap(errors.ErrEmpty, "nil action")
		}
		if err := act.Validate(); err != nil {
			return errors.Wrap(err, "action")
		}
	}
	for _, a := range p.Approvals {
		if err := a.Validate(); err != nil {
			return errors.Wrap(err, "approval")
		}
	}
	return nil
}

// HasApproval returns true if the given member already approved.
func (p *Proposal) HasApproval(a accord.Address) bool {
	for _, appr := range p.Approvals {
		if appr.Equals(a) {
			return true
		}
	}
	return false
}

// Approve adds the member to the approval set. Re-approval fails loudly
// with ErrDuplicate: a duplicate signals the caller's view of the
// proposal is stale, silently absorbing it would hide that.
func (p *Proposal) Approve(a accord.Address) error {
	if p.HasApproval(a) {
		return errors.Wrapf(errors.ErrDuplicate, "already approved by %s", a)
	}
	p.Approvals = append(p.Approvals, a)
	sort.Slice(p.Approvals, func(i, j int) bool {
		return string(p.Approvals[i]) < string(p.Approvals[j])
	})
	return nil
}

// RemoveApproval removes the member from the approval set, failing with
// ErrNotFound if it never approved.
func (p *Proposal) RemoveApproval(a accord.Address) error {
	for i, appr := range p.Approvals {
		if appr.Equals(a) {
			p.Approvals = append(p.Approvals[:i], p.Approvals[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(errors.ErrNotFound, "no approval by %s", a)
}

// SupportWeight sums the approvers' weights against the live rules. An
// approver that left the registry since approving contributes nothing.
// When the issuer is role scoped and a role threshold row exists, only
// approvers holding that role count towards it.
func (p *Proposal) SupportWeight(r Rules) uint64 {
	roleScoped := p.Issuer.Role != RoleGlobal && r.HasThreshold(p.Issuer.Role)
	var total uint64
	for _, a := range p.Approvals {
		m, ok := r.Member(a)
		if !ok {
			continue
		}
		if roleScoped && !m.HasRole(p.Issuer.Role) {
			continue
		}
		total += uint64(m.Weight)
	}
	return total
}
