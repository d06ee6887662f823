/*
Package transfer is the action family paying coins out of an account
treasury to arbitrary destinations, gated by the account's approval
rules.
*/
package transfer

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/account"
	"github.com/accord-ledger/accord/coin"
	"github.com/accord-ledger/accord/errors"
	"github.com/accord-ledger/accord/x/cash"
	"github.com/accord-ledger/accord/x/currency"
)

type familyWitness struct{}

func (familyWitness) FamilyPath() string { return "transfer" }

var family = familyWitness{}

// Witness returns the family witness presented to engine calls on
// behalf of this package.
func Witness() account.Family { return family }

func init() {
	account.RegisterAction("transfer/send", &SendAction{})
}

// SendAction pays coins from the account treasury to the destination.
type SendAction struct {
	Metadata    *accord.Metadata `json:"metadata"`
	Amount      coin.Coin        `json:"amount"`
	Destination accord.Address   `json:"destination"`
	Applied     bool             `json:"applied"`
}

var _ account.Action = (*SendAction)(nil)

// Validate returns an error if the action is invalid.
func (a *SendAction) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if !a.Amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "send amount: %s", a.Amount)
	}
	if err := a.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if a.Applied {
		return errors.Wrap(errors.ErrInvalidState, "already applied")
	}
	return nil
}

// Service drives transfer proposals through the engine.
type Service struct {
	engine *account.Engine
	cash   cash.Controller
}

// NewService returns a transfer service bound to the given engine.
func NewService(engine *account.Engine) Service {
	return Service{
		engine: engine,
		cash:   cash.NewController(),
	}
}

// ProposeSend opens a proposal paying the amount to the destination once
// quorum is reached. The auth is consumed.
func (s Service) ProposeSend(
	ctx accord.Context,
	db accord.KVStore,
	auth *account.Auth,
	key string,
	title string,
	executeAfter accord.UnixTime,
	expiresAt accord.EpochHeight,
	amount coin.Coin,
	dest accord.Address,
) error {
	action := &SendAction{
		Metadata:    &accord.Metadata{Schema: 1},
		Amount:      amount,
		Destination: dest,
	}
	return s.engine.CreateProposal(ctx, db, auth, family, key, title, "", executeAfter, expiresAt, []account.Action{action})
}

// Execute pays out the approved proposal from the account treasury.
func (s Service) Execute(ctx accord.Context, db accord.CacheableKVStore, acctAddr accord.Address, key string) error {
	return s.engine.RunExecution(ctx, db, acctAddr, key, family,
		func(db accord.KVStore, x *account.Executable) error {
			treasury := currency.Treasury(x.Account())
			for i := 0; i < x.Len(); i++ {
				cur, err := x.Current()
				if err != nil {
					return err
				}
				send, ok := cur.(*SendAction)
				if !ok {
					return errors.Wrapf(account.ErrWrongActionType, "%T", cur)
				}
				if err := s.cash.MoveCoins(db, treasury, send.Destination, send.Amount); err != nil {
					return err
				}
				send.Applied = true
				if err := x.MarkDone(); err != nil {
					return err
				}
				done, err := x.Cleanup()
				if err != nil {
					return err
				}
				if !done.(*SendAction).Applied {
					return errors.Wrap(account.ErrNotExecuted, "send not applied")
				}
			}
			return x.Terminate()
		})
}
