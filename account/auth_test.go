package account

import (
	"testing"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/accordtest"
	"github.com/accord-ledger/accord/accordtest/assert"
	"github.com/accord-ledger/accord/errors"
)

func TestAuthenticate(t *testing.T) {
	acct := testAccount()

	cases := map[string]struct {
		sender  accord.Address
		role    string
		wantErr *errors.Error
	}{
		"member without role": {
			sender: carolAddr,
		},
		"member with role": {
			sender: aliceAddr,
			role:   "payer",
		},
		"no sender": {
			sender:  nil,
			wantErr: errors.ErrUnauthorized,
		},
		"not a member": {
			sender:  accordtest.SequenceAddress(99),
			wantErr: ErrNotMember,
		},
		"unknown role": {
			sender:  aliceAddr,
			role:    "auditor",
			wantErr: ErrNoSuchRole,
		},
		"member without the role": {
			sender:  carolAddr,
			role:    "payer",
			wantErr: ErrInsufficientRole,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := testCtx(1, tc.sender)
			auth, err := Authenticate(ctx, acct, tc.role)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.sender, auth.Member())
			assert.Equal(t, tc.role, auth.Role())
		})
	}
}

func TestAuthSingleUse(t *testing.T) {
	acct := testAccount()
	ctx := testCtx(1, aliceAddr)

	auth, err := Authenticate(ctx, acct, RoleGlobal)
	assert.Nil(t, err)

	assert.Nil(t, auth.consume(acct.Address))
	assert.IsErr(t, errors.ErrInvalidState, auth.consume(acct.Address))
}

func TestAuthWrongAccount(t *testing.T) {
	acct := testAccount()
	ctx := testCtx(1, aliceAddr)

	auth, err := Authenticate(ctx, acct, RoleGlobal)
	assert.Nil(t, err)
	assert.IsErr(t, ErrWrongAccount, auth.consume(accordtest.SequenceAddress(200)))
}

func TestCoreFamilyRegistry(t *testing.T) {
	assert.Nil(t, AssertCoreDep(adminFamily))
	assert.IsErr(t, ErrNotCoreDependency, AssertCoreDep(noteFamily))
	assert.IsErr(t, ErrNotCoreDependency, AssertCoreDep(nil))

	// reuse must panic
	assert.Panics(t, func() {
		RegisterCoreFamily(adminFamily)
	})
}
