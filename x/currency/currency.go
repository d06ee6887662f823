/*
Package currency is the action family minting and burning coins under
the control of an account's approval rules. Minted coins land in the
account treasury, burns are taken from it.

Every action is applied in two phases. The side effect runs first and
flips the action's Applied marker, the cleanup phase then destructures
the payload and asserts the marker. An execution that skips the side
effect can therefore never complete, and the surrounding atomic block
rolls everything back.
*/
package currency

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/account"
	"github.com/accord-ledger/accord/coin"
	"github.com/accord-ledger/accord/errors"
	"github.com/accord-ledger/accord/x/cash"
)

type familyWitness struct{}

func (familyWitness) FamilyPath() string { return "currency" }

var family = familyWitness{}

// Witness returns the family witness presented to engine calls on
// behalf of this package.
func Witness() account.Family { return family }

func init() {
	account.RegisterAction("currency/mint", &MintAction{})
	account.RegisterAction("currency/burn", &BurnAction{})
}

// Treasury returns the address holding the account's funds. It is
// derived from the account address, no key controls it directly.
func Treasury(acct accord.Address) accord.Address {
	return accord.NewCondition("account", "treasury", acct).Address()
}

// MintAction creates new coins in the account treasury.
type MintAction struct {
	Metadata *accord.Metadata `json:"metadata"`
	Amount   coin.Coin        `json:"amount"`
	Applied  bool             `json:"applied"`
}

var _ account.Action = (*MintAction)(nil)

// Validate returns an error if the action is invalid.
func (a *MintAction) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if !a.Amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "mint amount: %s", a.Amount)
	}
	if a.Applied {
		return errors.Wrap(errors.ErrInvalidState, "already applied")
	}
	return nil
}

// BurnAction destroys coins held in the account treasury.
type BurnAction struct {
	Metadata *accord.Metadata `json:"metadata"`
	Amount   coin.Coin        `json:"amount"`
	Applied  bool             `json:"applied"`
}

var _ account.Action = (*BurnAction)(nil)

// Validate returns an error if the action is invalid.
func (a *BurnAction) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if !a.Amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "burn amount: %s", a.Amount)
	}
	if a.Applied {
		return errors.Wrap(errors.ErrInvalidState, "already applied")
	}
	return nil
}

// Service drives currency proposals through the engine.
type Service struct {
	engine *account.Engine
	cash   cash.Controller
}

// NewService returns a currency service bound to the given engine.
func NewService(engine *account.Engine) Service {
	return Service{
		engine: engine,
		cash:   cash.NewController(),
	}
}

// Propose opens a currency proposal holding the given mint and burn
// actions. The auth must have been issued for the target account and is
// consumed here.
func (s Service) Propose(
	ctx accord.Context,
	db accord.KVStore,
	auth *account.Auth,
	key string,
	title string,
	executeAfter accord.UnixTime,
	expiresAt accord.EpochHeight,
	actions []account.Action,
) error {
	for _, act := range actions {
		switch act.(type) {
		case *MintAction, *BurnAction:
		default:
			return errors.Wrapf(account.ErrWrongActionType, "%T", act)
		}
	}
	return s.engine.CreateProposal(ctx, db, auth, family, key, title, "", executeAfter, expiresAt, actions)
}

// Execute runs the approved proposal to completion. Coins are minted
// into and burned from the account treasury.
func (s Service) Execute(ctx accord.Context, db accord.CacheableKVStore, acctAddr accord.Address, key string) error {
	return s.engine.RunExecution(ctx, db, acctAddr, key, family,
		func(db accord.KVStore, x *account.Executable) error {
			for i := 0; i < x.Len(); i++ {
				if err := s.applyNext(db, x); err != nil {
					return err
				}
				if err := s.completeNext(x); err != nil {
					return err
				}
			}
			return x.Terminate()
		})
}

// applyNext runs the side effect of the current action and advances the
// execution cursor.
func (s Service) applyNext(db accord.KVStore, x *account.Executable) error {
	cur, err := x.Current()
	if err != nil {
		return err
	}
	treasury := Treasury(x.Account())
	switch act := cur.(type) {
	case *MintAction:
		if err := s.cash.IssueCoins(db, treasury, act.Amount); err != nil {
			return err
		}
		act.Applied = true
	case *BurnAction:
		if err := s.cash.BurnCoins(db, treasury, act.Amount); err != nil {
			return err
		}
		act.Applied = true
	default:
		return errors.Wrapf(account.ErrWrongActionType, "%T", cur)
	}
	return x.MarkDone()
}

// completeNext destructures the oldest applied action and asserts its
// marker.
func (s Service) completeNext(x *account.Executable) error {
	act, err := x.Cleanup()
	if err != nil {
		return err
	}
	switch act := act.(type) {
	case *MintAction:
		if !act.Applied {
			return errors.Wrap(account.ErrNotExecuted, "mint not applied")
		}
	case *BurnAction:
		if !act.Applied {
			return errors.Wrap(account.ErrNotExecuted, "burn not applied")
		}
	default:
		return errors.Wrapf(account.ErrWrongActionType, "%T", act)
	}
	return nil
}
