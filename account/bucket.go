package account

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
	"github.com/accord-ledger/accord/orm"
)

// AccountBucket wraps the orm bucket holding accounts keyed by their
// address.
type AccountBucket struct {
	orm.ModelBucket
}

// NewAccountBucket returns a bucket for accounts.
func NewAccountBucket() AccountBucket {
	return AccountBucket{
		ModelBucket: orm.NewModelBucket("account", cdc),
	}
}

// GetAccount loads the account stored under the given address.
func (b AccountBucket) GetAccount(db accord.KVStore, addr accord.Address) (*Account, error) {
	var acct Account
	if err := b.One(db, addr, &acct); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &acct, nil
}

// Save persists the account under its own address.
func (b AccountBucket) Save(db accord.KVStore, acct *Account) error {
	return b.Put(db, acct.Address, acct)
}

// ProposalBucket wraps the orm bucket holding open proposals. Proposals
// are keyed by the owning account address followed by the raw proposal
// key, so iterating an account prefix walks its proposals in ascending
// key order.
type ProposalBucket struct {
	orm.ModelBucket
}

// NewProposalBucket returns a bucket for proposals.
func NewProposalBucket() ProposalBucket {
	return ProposalBucket{
		ModelBucket: orm.NewModelBucket("proposal", cdc),
	}
}

func proposalDBKey(acct accord.Address, key string) []byte {
	out := make([]byte, 0, accord.AddressLength+len(key))
	out = append(out, acct...)
	return append(out, key...)
}

// GetProposal loads the open proposal of the account under the given
// key.
func (b ProposalBucket) GetProposal(db accord.KVStore, acct accord.Address, key string) (*Proposal, error) {
	var p Proposal
	if err := b.One(db, proposalDBKey(acct, key), &p); err != nil {
		return nil, errors.Wrapf(err, "proposal %q", key)
	}
	return &p, nil
}

// HasProposal checks existence without decoding.
func (b ProposalBucket) HasProposal(db accord.KVStore, acct accord.Address, key string) bool {
	return b.Has(db, proposalDBKey(acct, key))
}

// SaveProposal persists the proposal under its account and key.
func (b ProposalBucket) SaveProposal(db accord.KVStore, key string, p *Proposal) error {
	return b.Put(db, proposalDBKey(p.Account, key), p)
}

// DeleteProposal removes the proposal, failing with ErrNotFound if the
// key holds none.
func (b ProposalBucket) DeleteProposal(db accord.KVStore, acct accord.Address, key string) error {
	return b.Delete(db, proposalDBKey(acct, key))
}

// IterateAccount walks all open proposals of the account in ascending
// proposal key order, invoking fn for each. Returning a non nil error
// from fn stops the walk and is passed through.
func (b ProposalBucket) IterateAccount(db accord.KVStore, acct accord.Address, fn func(key string, p *Proposal) error) error {
	it := b.Iterate(db, acct)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		var p Proposal
		if err := b.Decode(it.Value(), &p); err != nil {
			return err
		}
		key := string(b.ParseKey(it.Key())[accord.AddressLength:])
		if err := fn(key, &p); err != nil {
			return err
		}
	}
	return nil
}
