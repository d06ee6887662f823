/*
Package cash keeps balances. Wallets are stored per address and mutated
only through the controller functions, which preserve the total supply
on moves and keep every wallet a valid sorted coin set.
*/
package cash

import (
	amino "github.com/tendermint/go-amino"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/coin"
	"github.com/accord-ledger/accord/errors"
	"github.com/accord-ledger/accord/orm"
)

// Wallet is the balance set held under one address.
type Wallet struct {
	Metadata *accord.Metadata `json:"metadata"`
	Coins    coin.Coins       `json:"coins"`
}

// Validate returns an error if the wallet is in an invalid state.
func (w *Wallet) Validate() error {
	if err := w.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return w.Coins.Validate()
}

var cdc = amino.NewCodec()

// WalletBucket stores wallets keyed by owner address.
type WalletBucket struct {
	orm.ModelBucket
}

// NewWalletBucket returns a bucket for wallets.
func NewWalletBucket() WalletBucket {
	return WalletBucket{
		ModelBucket: orm.NewModelBucket("wallet", cdc),
	}
}

// GetOrCreate loads the wallet of the owner, returning an empty one if
// the owner holds nothing yet.
func (b WalletBucket) GetOrCreate(db accord.KVStore, owner accord.Address) (*Wallet, error) {
	var w Wallet
	switch err := b.One(db, owner, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{Metadata: &accord.Metadata{Schema: 1}}, nil
	default:
		return nil, err
	}
}

// Balance returns the coins held by the owner, nil for unknown owners.
func (b WalletBucket) Balance(db accord.KVStore, owner accord.Address) (coin.Coins, error) {
	var w Wallet
	switch err := b.One(db, owner, &w); {
	case err == nil:
		return w.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Save persists the wallet, removing the db entry entirely when the
// wallet drained to empty.
func (b WalletBucket) Save(db accord.KVStore, owner accord.Address, w *Wallet) error {
	if len(w.Coins) == 0 {
		if b.Has(db, owner) {
			return b.Delete(db, owner)
		}
		return nil
	}
	return b.Put(db, owner, w)
}
