/*
Package iavl provides a CommitKVStore backed by a merkle tree. Committed
versions carry a root hash, so two hosts holding the same version can
cheaply verify they hold the same account state.
*/
package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/accord-ledger/accord/store"
)

// cacheSize is the number of inner nodes iavl holds in memory.
const cacheSize = 10000

// CommitStore manages a committed, versioned state tree.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a store with disk backing under the given
// directory.
func NewCommitStore(dir, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return CommitStore{}, err
	}
	return CommitStore{tree: iavl.NewMutableTree(db, cacheSize)}, nil
}

// MemCommitStore creates a commit store without disk persistence, useful
// for tests.
func MemCommitStore() CommitStore {
	return CommitStore{tree: iavl.NewMutableTree(dbm.NewMemDB(), cacheSize)}
}

// Get returns the value in the working tree, nil if the key is absent.
func (s CommitStore) Get(key []byte) []byte {
	_, value := s.tree.Get(key)
	return value
}

// Has checks existence in the working tree.
func (s CommitStore) Has(key []byte) bool {
	return s.tree.Has(key)
}

// Set writes to the working tree. The change is not durable until Commit.
func (s CommitStore) Set(key, value []byte) {
	s.tree.Set(key, value)
}

// Delete removes the key from the working tree.
func (s CommitStore) Delete(key []byte) {
	s.tree.Remove(key)
}

// Iterator over a domain of keys in ascending order. The result is
// materialized, so writes during iteration are safe.
func (s CommitStore) Iterator(start, end []byte) store.Iterator {
	var data []store.Model
	s.tree.IterateRange(start, end, true, func(key, value []byte) bool {
		data = append(data, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(data)
}

// CacheWrap returns a scratch-pad over the working tree.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s)
}

// Commit saves the working tree as the next version and returns its
// identity.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, err
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the latest persisted version from disk.
func (s CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	return err
}

// LatestVersion returns info on the latest saved version.
func (s CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}
