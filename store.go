package accord

// KVStore is a simple interface to get/set data. For simplicity, all
// backing stores implement this interface. They may implement other
// methods as well, but at least these are required.
type KVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) []byte

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) bool

	// Set sets the key. Panics on nil key.
	Set(key, value []byte)

	// Delete deletes the key. Panics on nil key.
	Delete(key []byte)

	// Iterator over a domain of keys in ascending order. End is
	// exclusive. Start must be less than end, or the Iterator is
	// invalid. A nil bound means unbounded on that side.
	//
	// CONTRACT: No writes may happen within a domain while an iterator
	// exists over it.
	Iterator(start, end []byte) Iterator
}

// Iterator allows access to a set of items within a range of keys.
//
//   var itr Iterator = ...
//   defer itr.Close()
//
//   for ; itr.Valid(); itr.Next() {
//     k, v := itr.Key(), itr.Value()
//     ...
//   }
type Iterator interface {
	// Valid returns whether the current position is valid. Once
	// invalid, an Iterator is forever invalid.
	Valid() bool

	// Next moves the iterator to the next sequential key. If Valid
	// returns false, this method panics.
	Next()

	// Key returns the key of the cursor. If Valid returns false, this
	// method panics.
	Key() []byte

	// Value returns the value of the cursor. If Valid returns false,
	// this method panics.
	Value() []byte

	// Close releases the Iterator.
	Close()
}

// CacheableKVStore is a KVStore that supports CacheWrap to group writes
// which may be committed or discarded together. Like Postgresql SAVEPOINT
// / ROLLBACK TO SAVEPOINT.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a scratch-pad of uncommitted data visible to all reads
// through it. At the end, call Write to flush to the parent store, or
// Discard to drop everything.
type KVCacheWrap interface {
	// CacheableKVStore allows using the cache recursively.
	CacheableKVStore

	// Write syncs with the underlying store and invalidates the wrap.
	Write()

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}

// CommitID is the identity of a committed state, the version number and
// the merkle root of that version.
type CommitID struct {
	Version int64
	Hash    []byte
}

// CommitKVStore is a store that can persist state, load it on start up
// and report committed versions.
type CommitKVStore interface {
	KVStore

	// CacheWrap returns a scratch-pad over the latest committed state.
	CacheWrap() KVCacheWrap

	// Commit writes the pending state as the next version.
	Commit() (CommitID, error)

	// LoadLatestVersion loads the latest persisted version. If there
	// was a crash during the last commit it is guaranteed to return a
	// stable state, even if older.
	LoadLatestVersion() error

	// LatestVersion returns info on the latest version saved to disk.
	LatestVersion() CommitID
}
