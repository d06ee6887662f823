package account

import (
	"testing"
	"time"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/accordtest"
	"github.com/accord-ledger/accord/accordtest/assert"
	"github.com/accord-ledger/accord/errors"
)

// setupAccount returns an engine, a fresh store and a persisted default
// account.
func setupAccount(t *testing.T) (*Engine, accord.CacheableKVStore, *Account) {
	t.Helper()
	engine := NewEngine(extAllowAll{})
	db := accordtest.Store()
	acct := testAccount()
	assert.Nil(t, engine.CreateAccount(testCtx(1, aliceAddr), db, acct))
	return engine, db, acct
}

// propose opens a proposal issued by the given member through the note
// family, valid until epoch 100.
func propose(t *testing.T, engine *Engine, db accord.KVStore, acct *Account, sender accord.Address, role, key string, actions ...Action) {
	t.Helper()
	ctx := testCtx(1, sender)
	auth, err := Authenticate(ctx, acct, role)
	assert.Nil(t, err)
	if len(actions) == 0 {
		actions = []Action{&noteAction{Memo: "test"}}
	}
	err = engine.CreateProposal(ctx, db, auth, noteFamily, key, "a test proposal", "", 0, 100, actions)
	assert.Nil(t, err)
}

func TestCreateAccount(t *testing.T) {
	engine := NewEngine(extAllowAll{})
	db := accordtest.Store()
	ctx := testCtx(1, aliceAddr)

	acct := testAccount()
	assert.Nil(t, engine.CreateAccount(ctx, db, acct))
	assert.IsErr(t, errors.ErrDuplicate, engine.CreateAccount(ctx, db, acct))

	got, err := engine.GetAccount(db, acct.Address)
	assert.Nil(t, err)
	assert.Equal(t, acct.Rules, got.Rules)
}

func TestCreateAccountUnreachableThreshold(t *testing.T) {
	engine := NewEngine(extAllowAll{})
	db := accordtest.Store()

	acct := testAccount()
	acct.Rules.Thresholds[0].Weight = 99
	err := engine.CreateAccount(testCtx(1, aliceAddr), db, acct)
	assert.IsErr(t, ErrThresholdTooHigh, err)
}

func TestProposalLifecycle(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")

	// alice (2) alone misses the global threshold of 3
	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	_, err := engine.Execute(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, ErrThresholdNotReached, err)

	// bob (1) completes the quorum
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	err = engine.RunExecution(testCtx(3, aliceAddr), db, acct.Address, "rotate-keys", noteFamily,
		func(db accord.KVStore, x *Executable) error {
			cur, err := x.Current()
			if err != nil {
				return err
			}
			cur.(*noteAction).Applied = true
			if err := x.MarkDone(); err != nil {
				return err
			}
			if _, err := x.Cleanup(); err != nil {
				return err
			}
			return x.Terminate()
		})
	assert.Nil(t, err)

	// the proposal is gone, a second execution finds nothing
	_, err = engine.Execute(testCtx(3, aliceAddr), db, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestExecuteOnceAcrossCacheWraps(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")
	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	// two transactions race for the same proposal, each in its own
	// overlay over the shared backing store
	first := db.CacheWrap()
	second := db.CacheWrap()

	_, err := engine.Execute(testCtx(3, aliceAddr), first, acct.Address, "rotate-keys", noteFamily)
	assert.Nil(t, err)
	first.Write()

	// the winning write removed the proposal from the backing store,
	// the competing overlay reads through and finds nothing left
	_, err = engine.Execute(testCtx(3, aliceAddr), second, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, errors.ErrNotFound, err)
	second.Discard()

	assert.Equal(t, false, engine.HasProposal(db, acct.Address, "rotate-keys"))
}

func TestProposalDuplicateKey(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")

	ctx := testCtx(1, bobAddr)
	auth, err := Authenticate(ctx, acct, RoleGlobal)
	assert.Nil(t, err)
	err = engine.CreateProposal(ctx, db, auth, noteFamily, "rotate-keys", "again", "", 0, 100, []Action{&noteAction{Memo: "x"}})
	assert.IsErr(t, ErrProposalExists, err)
}

func TestProposalAuthConsumedOnce(t *testing.T) {
	engine, db, acct := setupAccount(t)

	ctx := testCtx(1, aliceAddr)
	auth, err := Authenticate(ctx, acct, RoleGlobal)
	assert.Nil(t, err)

	actions := []Action{&noteAction{Memo: "x"}}
	assert.Nil(t, engine.CreateProposal(ctx, db, auth, noteFamily, "first", "first", "", 0, 100, actions))
	err = engine.CreateProposal(ctx, db, auth, noteFamily, "second", "second", "", 0, 100, actions)
	assert.IsErr(t, errors.ErrInvalidState, err)
}

func TestApproveChecks(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")

	// non member cannot approve
	outsider := accordtest.SequenceAddress(99)
	assert.IsErr(t, ErrNotMember, engine.Approve(testCtx(2, outsider), db, acct.Address, "rotate-keys"))

	// re-approval fails loudly
	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	assert.IsErr(t, errors.ErrDuplicate, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))

	// expired proposals take no approvals
	assert.IsErr(t, errors.ErrExpired, engine.Approve(testCtx(100, bobAddr), db, acct.Address, "rotate-keys"))
}

func TestApprovalWithdrawal(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")

	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	// bob backs out, quorum is lost again
	assert.Nil(t, engine.RemoveApproval(testCtx(3, bobAddr), db, acct.Address, "rotate-keys"))
	_, err := engine.Execute(testCtx(3, aliceAddr), db, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, ErrThresholdNotReached, err)

	// withdrawing what was never given fails
	err = engine.RemoveApproval(testCtx(3, carolAddr), db, acct.Address, "rotate-keys")
	assert.IsErr(t, errors.ErrNotFound, err)

	// withdrawal works even past expiration
	assert.Nil(t, engine.RemoveApproval(testCtx(100, aliceAddr), db, acct.Address, "rotate-keys"))
}

func TestLiveWeightRecompute(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")

	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	// bob leaves the account, his recorded approval now counts nothing
	rules, err := acct.Rules.WithoutMembers([]accord.Address{bobAddr})
	assert.Nil(t, err)
	rules.Thresholds = []Threshold{
		{Role: RoleGlobal, Weight: 3},
		{Role: "payer", Weight: 2},
	}
	assert.Nil(t, engine.UpdateRules(testCtx(3, aliceAddr), db, adminFamily, acct.Address, rules))

	_, err = engine.Execute(testCtx(3, aliceAddr), db, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, ErrThresholdNotReached, err)
}

func TestRoleScopedThreshold(t *testing.T) {
	engine, db, acct := setupAccount(t)
	// issued under the payer role, tallied against its threshold of 2
	propose(t, engine, db, acct, aliceAddr, "payer", "pay-rent")

	// carol approves but does not hold the payer role, contributing
	// nothing to a role scoped tally
	assert.Nil(t, engine.Approve(testCtx(2, carolAddr), db, acct.Address, "pay-rent"))
	_, err := engine.Execute(testCtx(2, aliceAddr), db, acct.Address, "pay-rent", noteFamily)
	assert.IsErr(t, ErrThresholdNotReached, err)

	// alice holds payer with weight 2, meeting the role threshold
	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "pay-rent"))
	_, err = engine.Execute(testCtx(2, aliceAddr), db, acct.Address, "pay-rent", noteFamily)
	assert.Nil(t, err)
}

func TestExecuteGuards(t *testing.T) {
	engine, db, acct := setupAccount(t)

	ctx := testCtx(1, aliceAddr)
	auth, err := Authenticate(ctx, acct, RoleGlobal)
	assert.Nil(t, err)
	err = engine.CreateProposal(ctx, db, auth, noteFamily, "rotate-keys", "delayed", "", accord.AsUnixTime(testTime.Add(time.Hour)), 100, []Action{&noteAction{Memo: "x"}})
	assert.Nil(t, err)

	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	// only the issuing family may execute
	_, err = engine.Execute(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys", otherFamily)
	assert.IsErr(t, ErrWrongIssuer, err)

	// the execute-after delay gates execution
	_, err = engine.Execute(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, ErrTooEarly, err)

	// expiration gates execution
	lateCtx := accordtest.NewContext(testTime.Add(2*time.Hour), 100, aliceAddr)
	_, err = engine.Execute(lateCtx, db, acct.Address, "rotate-keys", noteFamily)
	assert.IsErr(t, errors.ErrExpired, err)
}

func TestAbandonedExecutionRollsBack(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")
	assert.Nil(t, engine.Approve(testCtx(2, aliceAddr), db, acct.Address, "rotate-keys"))
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	// fn never drives the executable, so the whole block is discarded
	err := engine.RunExecution(testCtx(3, aliceAddr), db, acct.Address, "rotate-keys", noteFamily,
		func(accord.KVStore, *Executable) error { return nil })
	assert.IsErr(t, ErrActionsRemaining, err)

	// the proposal survived the failed execution
	p, err := engine.proposals.GetProposal(db, acct.Address, "rotate-keys")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(p.Approvals))
}

func TestDeleteProposal(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "rotate-keys")
	assert.Nil(t, engine.Approve(testCtx(2, bobAddr), db, acct.Address, "rotate-keys"))

	// cannot delete while approvals remain
	err := engine.DeleteProposal(testCtx(3, aliceAddr), db, acct.Address, "rotate-keys")
	assert.IsErr(t, ErrProposalNotEmpty, err)

	assert.Nil(t, engine.RemoveApproval(testCtx(3, bobAddr), db, acct.Address, "rotate-keys"))

	// outsiders cannot delete even empty proposals
	outsider := accordtest.SequenceAddress(99)
	err = engine.DeleteProposal(testCtx(3, outsider), db, acct.Address, "rotate-keys")
	assert.IsErr(t, ErrNotMember, err)

	assert.Nil(t, engine.DeleteProposal(testCtx(3, carolAddr), db, acct.Address, "rotate-keys"))
	_, err = engine.proposals.GetProposal(db, acct.Address, "rotate-keys")
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestSweepExpired(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "first")
	propose(t, engine, db, acct, bobAddr, RoleGlobal, "second")

	ctx := testCtx(1, carolAddr)
	auth, err := Authenticate(ctx, acct, RoleGlobal)
	assert.Nil(t, err)
	err = engine.CreateProposal(ctx, db, auth, noteFamily, "keeper", "keeper", "", 0, 500, []Action{&noteAction{Memo: "x"}})
	assert.Nil(t, err)

	// nothing expired yet
	n, err := engine.SweepExpired(testCtx(50, nil), db, acct.Address)
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	// sweeping needs no membership
	outsider := accordtest.SequenceAddress(99)
	n, err = engine.SweepExpired(testCtx(100, outsider), db, acct.Address)
	assert.Nil(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, true, engine.proposals.HasProposal(db, acct.Address, "keeper"))
}

func TestProposalOrdering(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "zz-last")
	propose(t, engine, db, acct, bobAddr, RoleGlobal, "aa-first")
	propose(t, engine, db, acct, carolAddr, RoleGlobal, "mm-middle")

	var keys []string
	err := engine.proposals.IterateAccount(db, acct.Address, func(key string, p *Proposal) error {
		keys = append(keys, key)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"aa-first", "mm-middle", "zz-last"}, keys)
}

func TestProposalSequenceNumbers(t *testing.T) {
	engine, db, acct := setupAccount(t)
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "first")
	propose(t, engine, db, acct, bobAddr, RoleGlobal, "second")

	a, err := engine.GetProposal(db, acct.Address, "first")
	assert.Nil(t, err)
	b, err := engine.GetProposal(db, acct.Address, "second")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), a.Seq)
	assert.Equal(t, int64(2), b.Seq)

	// deleting a proposal does not free its number for reuse
	assert.Nil(t, engine.DeleteProposal(testCtx(2, aliceAddr), db, acct.Address, "second"))
	propose(t, engine, db, acct, aliceAddr, RoleGlobal, "third")
	c, err := engine.GetProposal(db, acct.Address, "third")
	assert.Nil(t, err)
	assert.Equal(t, int64(3), c.Seq)
}

func TestAtomicDiscardsOnPanic(t *testing.T) {
	db := accordtest.Store()
	db.Set([]byte("keep"), []byte("original"))

	err := Atomic(db, func(cache accord.KVStore) error {
		cache.Set([]byte("keep"), []byte("changed"))
		panic("boom")
	})
	assert.IsErr(t, errors.ErrPanic, err)
	assert.Equal(t, []byte("original"), db.Get([]byte("keep")))
}
