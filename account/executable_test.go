package account

import (
	"testing"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/accordtest/assert"
	"github.com/accord-ledger/accord/errors"
)

func TestExecutableFullDrain(t *testing.T) {
	actions := []Action{
		&noteAction{Memo: "first"},
		&noteAction{Memo: "second"},
	}
	x := newExecutable(accountAddr(), Issuer{Family: "note"}, actions)
	assert.Equal(t, 2, x.Len())

	for i := 0; i < len(actions); i++ {
		cur, err := x.Current()
		assert.Nil(t, err)
		cur.(*noteAction).Applied = true
		assert.Nil(t, x.MarkDone())

		done, err := x.Cleanup()
		assert.Nil(t, err)
		assert.Equal(t, true, done.(*noteAction).Applied)
	}

	assert.Nil(t, x.Terminate())
	assert.Equal(t, true, x.Terminated())

	// nothing works after termination
	_, err := x.Current()
	assert.IsErr(t, errors.ErrInvalidState, err)
	assert.IsErr(t, errors.ErrInvalidState, x.MarkDone())
	assert.IsErr(t, errors.ErrInvalidState, x.Terminate())
}

func TestExecutableCleanupBeforeDone(t *testing.T) {
	x := newExecutable(accountAddr(), Issuer{Family: "note"}, []Action{
		&noteAction{Memo: "only"},
	})
	_, err := x.Cleanup()
	assert.IsErr(t, ErrNotExecuted, err)
}

func TestExecutableTerminateEarly(t *testing.T) {
	x := newExecutable(accountAddr(), Issuer{Family: "note"}, []Action{
		&noteAction{Memo: "first"},
		&noteAction{Memo: "second"},
	})

	// nothing processed yet
	assert.IsErr(t, ErrActionsRemaining, x.Terminate())

	// processed but not cleaned up
	assert.Nil(t, x.MarkDone())
	assert.Nil(t, x.MarkDone())
	assert.IsErr(t, ErrActionsRemaining, x.Terminate())

	_, err := x.Cleanup()
	assert.Nil(t, err)
	assert.IsErr(t, ErrActionsRemaining, x.Terminate())

	_, err = x.Cleanup()
	assert.Nil(t, err)
	assert.Nil(t, x.Terminate())
}

func TestExecutableOverrun(t *testing.T) {
	x := newExecutable(accountAddr(), Issuer{Family: "note"}, []Action{
		&noteAction{Memo: "only"},
	})
	assert.Nil(t, x.MarkDone())
	assert.IsErr(t, errors.ErrInvalidState, x.MarkDone())
	_, err := x.Current()
	assert.IsErr(t, errors.ErrInvalidState, err)
}

func accountAddr() accord.Address {
	return testAccount().Address
}
