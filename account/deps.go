package account

import (
	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

// Extensions vets external action family packages before an account may
// take a dependency on them. The host wires an implementation backed by
// whatever package registry it trusts.
type Extensions interface {
	// IsAllowed reports whether the named package identity is known
	// and offers the given version.
	IsAllowed(name string, pkg accord.Address, version uint32) bool
}

// UpdateRules replaces the account's member registry and threshold
// table as one unit. Only core families may call this, regular families
// change rules by proposing a rules update action instead. The new rule
// set must pass the same reachability validation as at creation.
func (e *Engine) UpdateRules(ctx accord.Context, db accord.KVStore, w Family, acctAddr accord.Address, rules Rules) error {
	if err := AssertCoreDep(w); err != nil {
		return err
	}
	if err := rules.Validate(); err != nil {
		return errors.Wrap(err, "invalid rules")
	}
	acct, err := e.accounts.GetAccount(db, acctAddr)
	if err != nil {
		return err
	}
	acct.Rules = rules
	if err := e.accounts.Save(db, acct); err != nil {
		return err
	}
	accord.Logger(ctx).Info("account rules updated",
		"account", acctAddr.String(),
		"members", len(rules.Members))
	return nil
}

// AddDependency records that the account opted in to the given external
// package. The package must be vetted by the extension registry.
// Registering the same name with the same version fails with
// ErrDuplicate, with a lower version with ErrInvalidState. A higher
// version replaces the entry, version bumps are always this explicit.
func (e *Engine) AddDependency(ctx accord.Context, db accord.KVStore, w Family, acctAddr accord.Address, dep Dependency) error {
	if err := AssertCoreDep(w); err != nil {
		return err
	}
	if err := dep.Validate(); err != nil {
		return errors.Wrap(err, "invalid dependency")
	}
	if e.ext == nil || !e.ext.IsAllowed(dep.Name, dep.Pkg, dep.Version) {
		return errors.Wrapf(ErrNotAllowed, "package %q version %d", dep.Name, dep.Version)
	}
	acct, err := e.accounts.GetAccount(db, acctAddr)
	if err != nil {
		return err
	}
	if cur, ok := acct.Dep(dep.Name); ok {
		switch {
		case cur.Version == dep.Version:
			return errors.Wrapf(errors.ErrDuplicate, "dependency %q version %d", dep.Name, dep.Version)
		case cur.Version > dep.Version:
			return errors.Wrapf(errors.ErrInvalidState, "dependency %q already at version %d", dep.Name, cur.Version)
		}
		*cur = dep
	} else {
		acct.Deps = append(acct.Deps, dep)
	}
	if err := e.accounts.Save(db, acct); err != nil {
		return err
	}
	accord.Logger(ctx).Info("dependency registered",
		"account", acctAddr.String(),
		"dep", dep.Name,
		"version", dep.Version)
	return nil
}

// Asset is an opaque blob an action family manages on behalf of an
// account.
type Asset struct {
	Metadata *accord.Metadata `json:"metadata"`
	Raw      []byte           `json:"raw"`
}

// Validate returns an error if the asset is in an invalid state.
func (a *Asset) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(a.Raw) == 0 {
		return errors.Wrap(errors.ErrEmpty, "raw")
	}
	return nil
}

func assetDBKey(acct accord.Address, family, key string) []byte {
	out := make([]byte, 0, accord.AddressLength+len(family)+1+len(key))
	out = append(out, acct...)
	out = append(out, family...)
	out = append(out, '/')
	return append(out, key...)
}

// assertFamilyAccess gates asset access: core families always pass,
// anyone else must be a registered dependency of the account.
func (e *Engine) assertFamilyAccess(db accord.KVStore, w Family, acctAddr accord.Address) error {
	if w == nil {
		return errors.Wrap(errors.ErrInvalidInput, "missing family witness")
	}
	if coreFamilies[w.FamilyPath()] {
		return nil
	}
	acct, err := e.accounts.GetAccount(db, acctAddr)
	if err != nil {
		return err
	}
	if _, ok := acct.Dep(w.FamilyPath()); !ok {
		return errors.Wrapf(ErrNotAllowed, "family %q is not a dependency", w.FamilyPath())
	}
	return nil
}

// PutAsset stores a blob under the account for the calling family. The
// family namespace is part of the key, two families never collide.
func (e *Engine) PutAsset(db accord.KVStore, w Family, acctAddr accord.Address, key string, asset *Asset) error {
	if err := e.assertFamilyAccess(db, w, acctAddr); err != nil {
		return err
	}
	return e.assets.Put(db, assetDBKey(acctAddr, w.FamilyPath(), key), asset)
}

// GetAsset loads a blob stored earlier by the calling family.
func (e *Engine) GetAsset(db accord.KVStore, w Family, acctAddr accord.Address, key string) (*Asset, error) {
	if err := e.assertFamilyAccess(db, w, acctAddr); err != nil {
		return nil, err
	}
	var asset Asset
	if err := e.assets.One(db, assetDBKey(acctAddr, w.FamilyPath(), key), &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// RemoveAsset deletes a blob stored earlier by the calling family.
func (e *Engine) RemoveAsset(db accord.KVStore, w Family, acctAddr accord.Address, key string) error {
	if err := e.assertFamilyAccess(db, w, acctAddr); err != nil {
		return err
	}
	return e.assets.Delete(db, assetDBKey(acctAddr, w.FamilyPath(), key))
}
