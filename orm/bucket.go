/*
Package orm provides a thin bucket layer over the raw key-value store.

State space is broken into prefixed sections called buckets. Each bucket
holds one type of model, serialized through an amino codec supplied by
the owning package. Iteration over a bucket returns entries in ascending
key order, which the engine relies on for its ordered proposal map.
*/
package orm

import (
	"fmt"
	"regexp"

	amino "github.com/tendermint/go-amino"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by all entities persisted through a bucket.
type Model interface {
	Validate() error
}

// ModelBucket is a prefixed subspace of the database holding models of a
// single type.
type ModelBucket struct {
	name   string
	prefix []byte
	cdc    *amino.Codec
}

// NewModelBucket creates a bucket with the given name. The codec must
// know how to encode every model (and every interface field of a model)
// stored here.
func NewModelBucket(name string, cdc *amino.Codec) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	return ModelBucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		cdc:    cdc,
	}
}

// DBKey returns the full key as stored in the db, including the bucket
// prefix. A fresh array is allocated so consecutive calls do not clobber
// each other.
func (b ModelBucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// ParseKey strips the bucket prefix from a full database key.
func (b ModelBucket) ParseKey(dbKey []byte) []byte {
	return dbKey[len(b.prefix):]
}

// One loads a single model by key. Returns ErrNotFound if the key is not
// in the bucket.
func (b ModelBucket) One(db accord.KVStore, key []byte, dest Model) error {
	raw := db.Get(b.DBKey(key))
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := b.cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot decode %s: %s", b.name, err)
	}
	return nil
}

// Put validates and persists the model under the given key.
func (b ModelBucket) Put(db accord.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s model", b.name)
	}
	raw, err := b.cdc.MarshalBinaryBare(m)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot encode %s: %s", b.name, err)
	}
	db.Set(b.DBKey(key), raw)
	return nil
}

// Delete removes the entity. Returns ErrNotFound if it was not there.
func (b ModelBucket) Delete(db accord.KVStore, key []byte) error {
	dbKey := b.DBKey(key)
	if !db.Has(dbKey) {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	db.Delete(dbKey)
	return nil
}

// Has checks existence without decoding.
func (b ModelBucket) Has(db accord.KVStore, key []byte) bool {
	return db.Has(b.DBKey(key))
}

// Iterate returns an iterator over all bucket entries whose key starts
// with the given prefix, in ascending key order. Pass nil to walk the
// whole bucket. Keys returned by the iterator are full database keys,
// use ParseKey to recover the bucket-local part.
func (b ModelBucket) Iterate(db accord.KVStore, prefix []byte) accord.Iterator {
	start := b.DBKey(prefix)
	return db.Iterator(start, prefixEnd(start))
}

// Decode unmarshals raw iterator bytes into dest.
func (b ModelBucket) Decode(raw []byte, dest Model) error {
	if err := b.cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot decode %s: %s", b.name, err)
	}
	return nil
}

// prefixEnd returns the first key that is lexicographically above every
// key starting with the given prefix, or nil if no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
