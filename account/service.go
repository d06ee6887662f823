package account

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
	"github.com/accord-ledger/accord/orm"
)

// Engine holds the engine's buckets and implements every operation on
// accounts, proposals and executions. One Engine instance is shared by
// all action families, it carries no per-call state.
type Engine struct {
	accounts  AccountBucket
	proposals ProposalBucket
	assets    orm.ModelBucket
	seq       orm.Sequence
	ext       Extensions
}

// NewEngine returns an engine using the given extension registry for
// dependency vetting. Passing nil disables AddDependency entirely.
func NewEngine(ext Extensions) *Engine {
	return &Engine{
		accounts:  NewAccountBucket(),
		proposals: NewProposalBucket(),
		assets:    orm.NewModelBucket("asset", cdc),
		seq:       orm.NewSequence("proposal", "id"),
		ext:       ext,
	}
}

// GetAccount loads an account by address.
func (e *Engine) GetAccount(db accord.KVStore, addr accord.Address) (*Account, error) {
	return e.accounts.GetAccount(db, addr)
}

// GetProposal loads an open proposal of the account.
func (e *Engine) GetProposal(db accord.KVStore, acctAddr accord.Address, key string) (*Proposal, error) {
	return e.proposals.GetProposal(db, acctAddr, key)
}

// HasProposal checks whether the account has an open proposal under the
// given key.
func (e *Engine) HasProposal(db accord.KVStore, acctAddr accord.Address, key string) bool {
	return e.proposals.HasProposal(db, acctAddr, key)
}

// CreateAccount validates and persists a new account. It fails with
// ErrDuplicate when the address is already taken and with
// ErrThresholdTooHigh when any threshold is unreachable by the member
// weights, so an account can never be born deadlocked.
func (e *Engine) CreateAccount(ctx accord.Context, db accord.KVStore, acct *Account) error {
	if err := acct.Validate(); err != nil {
		return errors.Wrap(err, "invalid account")
	}
	if e.accounts.Has(db, acct.Address) {
		return errors.Wrapf(errors.ErrDuplicate, "account %s", acct.Address)
	}
	if err := e.accounts.Save(db, acct); err != nil {
		return err
	}
	accord.Logger(ctx).Info("account created",
		"account", acct.Address.String(),
		"members", len(acct.Rules.Members))
	return nil
}

// CreateProposal opens a new proposal under the account the auth was
// issued for. The auth is consumed, a second creation needs a fresh
// authentication. The witness determines the issuer family, the auth's
// role scope determines the threshold the proposal will be tallied
// against. The creator does not implicitly approve.
func (e *Engine) CreateProposal(
	ctx accord.Context,
	db accord.KVStore,
	auth *Auth,
	w Family,
	key string,
	title string,
	description string,
	executeAfter accord.UnixTime,
	expiresAt accord.EpochHeight,
	actions []Action,
) error {
	if w == nil {
		return errors.Wrap(errors.ErrInvalidInput, "missing family witness")
	}
	if !IsProposalKey(key) {
		return errors.Wrapf(errors.ErrInvalidInput, "proposal key: %q", key)
	}
	if auth == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing auth")
	}
	if err := auth.consume(auth.account); err != nil {
		return err
	}
	acct, err := e.accounts.GetAccount(db, auth.account)
	if err != nil {
		return err
	}
	if e.proposals.HasProposal(db, acct.Address, key) {
		return errors.Wrapf(ErrProposalExists, "%q", key)
	}
	epoch, ok := accord.Epoch(ctx)
	if !ok {
		return errors.Wrap(errors.ErrInvalidState, "epoch not set")
	}
	if expiresAt.Reached(epoch) {
		return errors.Wrapf(errors.ErrExpired, "expiration epoch %d not in the future", expiresAt)
	}
	now, ok := accord.BlockTime(ctx)
	if !ok {
		return errors.Wrap(errors.ErrInvalidState, "block time not set")
	}
	p := &Proposal{
		Metadata:     &accord.Metadata{Schema: acct.Metadata.Schema},
		Account:      acct.Address,
		Seq:          e.seq.NextInt(db),
		Title:        title,
		Description:  description,
		Issuer:       Issuer{Family: w.FamilyPath(), Role: auth.Role()},
		Actions:      actions,
		SubmittedAt:  accord.AsUnixTime(now),
		ExecuteAfter: executeAfter,
		ExpiresAt:    expiresAt,
	}
	if err := e.proposals.SaveProposal(db, key, p); err != nil {
		return err
	}
	accord.Logger(ctx).Info("proposal created",
		"account", acct.Address.String(),
		"key", key,
		"family", p.Issuer.Family,
		"actions", len(actions))
	return nil
}

// Approve records the sender's approval on the open proposal. Only
// current members may approve, approving an expired proposal fails and
// re-approval fails with ErrDuplicate.
func (e *Engine) Approve(ctx accord.Context, db accord.KVStore, acctAddr accord.Address, key string) error {
	acct, err := e.accounts.GetAccount(db, acctAddr)
	if err != nil {
		return err
	}
	sender, ok := accord.Sender(ctx)
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "sender not set")
	}
	if !acct.Rules.Contains(sender) {
		return errors.Wrapf(ErrNotMember, "%s", sender)
	}
	p, err := e.proposals.GetProposal(db, acctAddr, key)
	if err != nil {
		return err
	}
	epoch, ok := accord.Epoch(ctx)
	if !ok {
		return errors.Wrap(errors.ErrInvalidState, "epoch not set")
	}
	if p.ExpiresAt.Reached(epoch) {
		return errors.Wrapf(errors.ErrExpired, "proposal expired at epoch %d", p.ExpiresAt)
	}
	if err := p.Approve(sender); err != nil {
		return err
	}
	if err := e.proposals.SaveProposal(db, key, p); err != nil {
		return err
	}
	accord.Logger(ctx).Debug("proposal approved",
		"account", acctAddr.String(),
		"key", key,
		"member", sender.String())
	return nil
}

// RemoveApproval withdraws the sender's earlier approval. Unlike
// Approve this works on expired proposals too: withdrawing support must
// never be blocked.
func (e *Engine) RemoveApproval(ctx accord.Context, db accord.KVStore, acctAddr accord.Address, key string) error {
	sender, ok := accord.Sender(ctx)
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "sender not set")
	}
	p, err := e.proposals.GetProposal(db, acctAddr, key)
	if err != nil {
		return err
	}
	if err := p.RemoveApproval(sender); err != nil {
		return err
	}
	return e.proposals.SaveProposal(db, key, p)
}

// DeleteProposal discards an open proposal without executing it. Any
// current member may delete, but only once every approval was withdrawn.
func (e *Engine) DeleteProposal(ctx accord.Context, db accord.KVStore, acctAddr accord.Address, key string) error {
	acct, err := e.accounts.GetAccount(db, acctAddr)
	if err != nil {
		return err
	}
	sender, ok := accord.Sender(ctx)
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "sender not set")
	}
	if !acct.Rules.Contains(sender) {
		return errors.Wrapf(ErrNotMember, "%s", sender)
	}
	p, err := e.proposals.GetProposal(db, acctAddr, key)
	if err != nil {
		return err
	}
	if len(p.Approvals) != 0 {
		return errors.Wrapf(ErrProposalNotEmpty, "%d approvals left", len(p.Approvals))
	}
	if err := e.proposals.DeleteProposal(db, acctAddr, key); err != nil {
		return err
	}
	accord.Logger(ctx).Info("proposal deleted",
		"account", acctAddr.String(),
		"key", key)
	return nil
}

// Execute tallies the proposal against the live rules and, if the
// required threshold is met, removes it from the store and hands the
// action sequence to the issuing family as an Executable. The removal
// and the execution are one unit: run Execute inside Atomic so a failed
// or abandoned execution restores the proposal.
func (e *Engine) Execute(ctx accord.Context, db accord.KVStore, acctAddr accord.Address, key string, w Family) (*Executable, error) {
	if w == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "missing family witness")
	}
	acct, err := e.accounts.GetAccount(db, acctAddr)
	if err != nil {
		return nil, err
	}
	sender, ok := accord.Sender(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "sender not set")
	}
	if !acct.Rules.Contains(sender) {
		return nil, errors.Wrapf(ErrNotMember, "%s", sender)
	}
	p, err := e.proposals.GetProposal(db, acctAddr, key)
	if err != nil {
		return nil, err
	}
	if p.Issuer.Family != w.FamilyPath() {
		return nil, errors.Wrapf(ErrWrongIssuer, "proposal issued by %q", p.Issuer.Family)
	}
	now, ok := accord.BlockTime(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidState, "block time not set")
	}
	if !p.ExecuteAfter.IsZero() && accord.AsUnixTime(now) < p.ExecuteAfter {
		return nil, errors.Wrapf(ErrTooEarly, "executable after %s", p.ExecuteAfter)
	}
	epoch, ok := accord.Epoch(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidState, "epoch not set")
	}
	if p.ExpiresAt.Reached(epoch) {
		return nil, errors.Wrapf(errors.ErrExpired, "proposal expired at epoch %d", p.ExpiresAt)
	}
	required := acct.Rules.RequiredWeightFor(p.Issuer.Role)
	if have := p.SupportWeight(acct.Rules); have < required {
		return nil, errors.Wrapf(ErrThresholdNotReached, "have %d of %d", have, required)
	}
	if err := e.proposals.DeleteProposal(db, acctAddr, key); err != nil {
		return nil, err
	}
	accord.Logger(ctx).Info("proposal executing",
		"account", acctAddr.String(),
		"key", key,
		"family", p.Issuer.Family)
	return newExecutable(acctAddr, p.Issuer, p.Actions), nil
}

// SweepExpired removes every proposal of the account whose expiration
// epoch has passed and returns how many were removed. Anyone may sweep,
// expired garbage has no owner.
func (e *Engine) SweepExpired(ctx accord.Context, db accord.KVStore, acctAddr accord.Address) (int, error) {
	epoch, ok := accord.Epoch(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrInvalidState, "epoch not set")
	}
	var expired []string
	err := e.proposals.IterateAccount(db, acctAddr, func(key string, p *Proposal) error {
		if p.ExpiresAt.Reached(epoch) {
			expired = append(expired, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, key := range expired {
		if err := e.proposals.DeleteProposal(db, acctAddr, key); err != nil {
			return 0, err
		}
	}
	if len(expired) > 0 {
		accord.Logger(ctx).Info("expired proposals swept",
			"account", acctAddr.String(),
			"count", len(expired))
	}
	return len(expired), nil
}

// Atomic runs fn against a cache wrap of the store. The wrap is written
// through only when fn returns nil; on error or panic every write is
// discarded and the panic is converted into an error. Executions must
// run inside Atomic so an abandoned executable rolls the proposal
// removal back.
func Atomic(db accord.CacheableKVStore, fn func(accord.KVStore) error) (err error) {
	cache := db.CacheWrap()
	// deferred in this order so a recovered panic sets err before the
	// discard check runs
	defer func() {
		if err != nil {
			cache.Discard()
		}
	}()
	defer errors.Recover(&err)
	if err = fn(cache); err != nil {
		return err
	}
	cache.Write()
	return nil
}

// RunExecution is the standard execution wrapper: it executes the
// proposal inside an atomic block and requires fn to drive the
// executable to termination before the block commits.
func (e *Engine) RunExecution(
	ctx accord.Context,
	db accord.CacheableKVStore,
	acctAddr accord.Address,
	key string,
	w Family,
	fn func(db accord.KVStore, x *Executable) error,
) error {
	return Atomic(db, func(cache accord.KVStore) error {
		x, err := e.Execute(ctx, cache, acctAddr, key, w)
		if err != nil {
			return err
		}
		if err := fn(cache, x); err != nil {
			return err
		}
		if !x.Terminated() {
			return errors.Wrap(ErrActionsRemaining, "execution not terminated")
		}
		return nil
	})
}
