package store

import "github.com/accord-ledger/accord"

// Alias the storage types into this package for shorter names everywhere.

type KVStore = accord.KVStore
type Iterator = accord.Iterator
type CacheableKVStore = accord.CacheableKVStore
type KVCacheWrap = accord.KVCacheWrap
type CommitKVStore = accord.CommitKVStore
type CommitID = accord.CommitID

// Model is a pair of key and value bytes, as stored in the database.
type Model struct {
	Key   []byte
	Value []byte
}
