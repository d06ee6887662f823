package cash

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/coin"
	"github.com/accord-ledger/accord/errors"
)

// Controller implements balance mutations on top of the wallet bucket.
type Controller struct {
	bucket WalletBucket
}

// NewController returns a controller backed by a fresh wallet bucket.
func NewController() Controller {
	return Controller{bucket: NewWalletBucket()}
}

// Balance returns the coins held by the owner.
func (c Controller) Balance(db accord.KVStore, owner accord.Address) (coin.Coins, error) {
	return c.bucket.Balance(db, owner)
}

// MoveCoins moves the given amount from src to dest. It fails if src
// holds less than the amount. Moving coins to the source wallet is a
// no-op once the balance is confirmed sufficient.
func (c Controller) MoveCoins(db accord.KVStore, src, dest accord.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive amount: %s", amount)
	}
	sender, err := c.bucket.GetOrCreate(db, src)
	if err != nil {
		return err
	}
	remaining, err := sender.Coins.Subtract(amount)
	if err != nil {
		return errors.Wrapf(err, "sender %s", src)
	}
	if src.Equals(dest) {
		return nil
	}
	sender.Coins = remaining

	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	grown, err := recipient.Coins.Combine(amount)
	if err != nil {
		return err
	}
	recipient.Coins = grown

	if err := c.bucket.Save(db, src, sender); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, recipient)
}

// IssueCoins mints the given amount into the destination wallet.
func (c Controller) IssueCoins(db accord.KVStore, dest accord.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive amount: %s", amount)
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	grown, err := recipient.Coins.Combine(amount)
	if err != nil {
		return err
	}
	recipient.Coins = grown
	return c.bucket.Save(db, dest, recipient)
}

// BurnCoins destroys the given amount held by the owner. It fails if the
// owner holds less than the amount.
func (c Controller) BurnCoins(db accord.KVStore, owner accord.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive amount: %s", amount)
	}
	w, err := c.bucket.GetOrCreate(db, owner)
	if err != nil {
		return err
	}
	remaining, err := w.Coins.Subtract(amount)
	if err != nil {
		return errors.Wrapf(err, "owner %s", owner)
	}
	w.Coins = remaining
	return c.bucket.Save(db, owner, w)
}
