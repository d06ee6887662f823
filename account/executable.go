package account

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

// Executable is the single use cursor over an executed proposal's action
// sequence. It is created only by Engine.Execute and must be fully
// drained and terminated within the same transaction: the atomic runner
// discards every pending write, including the proposal removal, if the
// executable does not reach its terminal state.
//
// Consumption is two phased. A family first applies the side effect of
// the current action and advances with MarkDone, then destructures the
// payload via Cleanup and asserts the action's executed marker. The split
// exists because some side effects need external resources handed in by
// the caller between the two steps.
type Executable struct {
	account    accord.Address
	issuer     Issuer
	actions    []Action
	done       int
	cleaned    int
	terminated bool
}

func newExecutable(account accord.Address, issuer Issuer, actions []Action) *Executable {
	return &Executable{
		account: account,
		issuer:  issuer,
		actions: actions,
	}
}

// Account returns the address of the account this execution belongs to.
func (x *Executable) Account() accord.Address {
	return x.account
}

// Issuer returns the issuer record of the executed proposal.
func (x *Executable) Issuer() Issuer {
	return x.issuer
}

// Len returns the total number of actions.
func (x *Executable) Len() int {
	return len(x.actions)
}

// Current returns a read-only peek at the action whose side effect is to
// be applied next. Type checks are the caller's duty: family helpers
// assert their concrete payload type and fail with ErrWrongActionType on
// mismatch.
func (x *Executable) Current() (Action, error) {
	if err := x.usable(); err != nil {
		return nil, err
	}
	if x.done >= len(x.actions) {
		return nil, errors.Wrap(errors.ErrInvalidState, "all actions processed")
	}
	return x.actions[x.done], nil
}

// MarkDone records that the current action's side effect was applied and
// moves the cursor forward. Only family Do helpers call this, after the
// effect.
func (x *Executable) MarkDone() error {
	if err := x.usable(); err != nil {
		return err
	}
	if x.done >= len(x.actions) {
		return errors.Wrap(errors.ErrInvalidState, "all actions processed")
	}
	x.done++
	return nil
}

// Cleanup removes and returns the oldest action that was side-effected
// but not yet cleaned up. Calling it before the matching MarkDone fails
// with ErrNotExecuted. The family destructures the returned payload and
// must additionally assert its executed marker.
func (x *Executable) Cleanup() (Action, error) {
	if err := x.usable(); err != nil {
		return nil, err
	}
	if x.cleaned >= x.done {
		return nil, errors.Wrap(ErrNotExecuted, "side effect not applied")
	}
	act := x.actions[x.cleaned]
	x.cleaned++
	return act, nil
}

// Terminate retires the executable. It fails with ErrActionsRemaining
// unless every action was processed and cleaned up. This is the only way
// to legally finish an execution.
func (x *Executable) Terminate() error {
	if err := x.usable(); err != nil {
		return err
	}
	if x.done < len(x.actions) || x.cleaned < len(x.actions) {
		return errors.Wrapf(ErrActionsRemaining,
			"processed %d and cleaned %d of %d", x.done, x.cleaned, len(x.actions))
	}
	x.terminated = true
	return nil
}

// Terminated reports whether the executable reached its terminal state.
// The atomic runner checks this before committing.
func (x *Executable) Terminated() bool {
	return x.terminated
}

func (x *Executable) usable() error {
	if x.terminated {
		return errors.Wrap(errors.ErrInvalidState, "executable already terminated")
	}
	return nil
}
