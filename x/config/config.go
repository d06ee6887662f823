/*
Package config is the core action family changing an account's own
configuration: replacing the approval rules and registering external
package dependencies. Every change still goes through the proposal flow,
the core privilege only covers applying the approved result.
*/
package config

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/account"
	"github.com/accord-ledger/accord/errors"
)

type familyWitness struct{}

func (familyWitness) FamilyPath() string { return "config" }

var family = familyWitness{}

// Witness returns the family witness presented to engine calls on
// behalf of this package.
func Witness() account.Family { return family }

func init() {
	account.RegisterAction("config/update_rules", &UpdateRulesAction{})
	account.RegisterAction("config/add_deps", &AddDepsAction{})
	account.RegisterCoreFamily(family)
}

// UpdateRulesAction replaces the account's member registry and
// threshold table as one unit.
type UpdateRulesAction struct {
	Metadata *accord.Metadata `json:"metadata"`
	Rules    account.Rules    `json:"rules"`
	Applied  bool             `json:"applied"`
}

var _ account.Action = (*UpdateRulesAction)(nil)

// Validate returns an error if the action is invalid. The replacement
// rules must pass the full reachability validation already at proposal
// time, not only when applied.
func (a *UpdateRulesAction) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := a.Rules.Validate(); err != nil {
		return errors.Wrap(err, "rules")
	}
	if a.Applied {
		return errors.Wrap(errors.ErrInvalidState, "already applied")
	}
	return nil
}

// AddDepsAction registers external package dependencies on the account.
type AddDepsAction struct {
	Metadata *accord.Metadata     `json:"metadata"`
	Deps     []account.Dependency `json:"deps"`
	Applied  bool                 `json:"applied"`
}

var _ account.Action = (*AddDepsAction)(nil)

// Validate returns an error if the action is invalid.
func (a *AddDepsAction) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(a.Deps) == 0 {
		return errors.Wrap(errors.ErrEmpty, "deps")
	}
	for _, d := range a.Deps {
		if err := d.Validate(); err != nil {
			return errors.Wrap(err, "dep")
		}
	}
	if a.Applied {
		return errors.Wrap(errors.ErrInvalidState, "already applied")
	}
	return nil
}

// Service drives configuration proposals through the engine.
type Service struct {
	engine *account.Engine
}

// NewService returns a config service bound to the given engine.
func NewService(engine *account.Engine) Service {
	return Service{engine: engine}
}

// ProposeRulesUpdate opens a proposal replacing the account rules. The
// auth is consumed.
func (s Service) ProposeRulesUpdate(
	ctx accord.Context,
	db accord.KVStore,
	auth *account.Auth,
	key string,
	title string,
	expiresAt accord.EpochHeight,
	rules account.Rules,
) error {
	action := &UpdateRulesAction{
		Metadata: &accord.Metadata{Schema: 1},
		Rules:    rules,
	}
	return s.engine.CreateProposal(ctx, db, auth, family, key, title, "", 0, expiresAt, []account.Action{action})
}

// ProposeDeps opens a proposal registering the given dependencies. The
// auth is consumed.
func (s Service) ProposeDeps(
	ctx accord.Context,
	db accord.KVStore,
	auth *account.Auth,
	key string,
	title string,
	expiresAt accord.EpochHeight,
	deps []account.Dependency,
) error {
	action := &AddDepsAction{
		Metadata: &accord.Metadata{Schema: 1},
		Deps:     deps,
	}
	return s.engine.CreateProposal(ctx, db, auth, family, key, title, "", 0, expiresAt, []account.Action{action})
}

// Execute applies the approved configuration proposal.
func (s Service) Execute(ctx accord.Context, db accord.CacheableKVStore, acctAddr accord.Address, key string) error {
	return s.engine.RunExecution(ctx, db, acctAddr, key, family,
		func(db accord.KVStore, x *account.Executable) error {
			for i := 0; i < x.Len(); i++ {
				if err := s.applyNext(ctx, db, x); err != nil {
					return err
				}
				if err := completeNext(x); err != nil {
					return err
				}
			}
			return x.Terminate()
		})
}

func (s Service) applyNext(ctx accord.Context, db accord.KVStore, x *account.Executable) error {
	cur, err := x.Current()
	if err != nil {
		return err
	}
	switch act := cur.(type) {
	case *UpdateRulesAction:
		if err := s.engine.UpdateRules(ctx, db, family, x.Account(), act.Rules); err != nil {
			return err
		}
		act.Applied = true
	case *AddDepsAction:
		for _, dep := range act.Deps {
			if err := s.engine.AddDependency(ctx, db, family, x.Account(), dep); err != nil {
				return err
			}
		}
		act.Applied = true
	default:
		return errors.Wrapf(account.ErrWrongActionType, "%T", cur)
	}
	return x.MarkDone()
}

func completeNext(x *account.Executable) error {
	act, err := x.Cleanup()
	if err != nil {
		return err
	}
	switch act := act.(type) {
	case *UpdateRulesAction:
		if !act.Applied {
			return errors.Wrap(account.ErrNotExecuted, "rules update not applied")
		}
	case *AddDepsAction:
		if !act.Applied {
			return errors.Wrap(account.ErrNotExecuted, "deps update not applied")
		}
	default:
		return errors.Wrapf(account.ErrWrongActionType, "%T", act)
	}
	return nil
}
