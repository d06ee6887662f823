package account

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

// Initializer fulfils the accord.Initializer interface to load initial
// accounts from genesis.
type Initializer struct {
	engine *Engine
}

var _ accord.Initializer = (*Initializer)(nil)

// NewInitializer returns an initializer storing accounts through the
// given engine.
func NewInitializer(engine *Engine) *Initializer {
	return &Initializer{engine: engine}
}

// FromGenesis initializes the account state from the "accounts" genesis
// option. Accounts without metadata get the current schema.
func (i *Initializer) FromGenesis(opts accord.Options, db accord.KVStore) error {
	var accounts []Account
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return errors.Wrap(err, "cannot read genesis accounts")
	}
	seen := make(map[string]struct{}, len(accounts))
	for n := range accounts {
		acct := &accounts[n]
		if acct.Metadata == nil {
			acct.Metadata = &accord.Metadata{Schema: 1}
		}
		if err := acct.Validate(); err != nil {
			return errors.Wrapf(err, "genesis account #%d", n)
		}
		if _, ok := seen[string(acct.Address)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "genesis account %s", acct.Address)
		}
		seen[string(acct.Address)] = struct{}{}
		if err := i.engine.accounts.Save(db, acct); err != nil {
			return errors.Wrapf(err, "cannot store genesis account #%d", n)
		}
	}
	return nil
}
