package store

import "github.com/google/btree"

// MemStore is a btree-backed in-memory store, useful for tests and as a
// cache-wrappable base layer. There is no persistence.
type MemStore struct {
	bt *btree.BTree
}

var _ CacheableKVStore = (*MemStore)(nil)

// NewMemStore initializes an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		bt: btree.New(degree),
	}
}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (m *MemStore) Get(key []byte) []byte {
	assertValidKey(key)
	if res := m.bt.Get(bkey{key}); res != nil {
		return res.(setItem).value
	}
	return nil
}

// Has checks if a key exists. Panics on nil key.
func (m *MemStore) Has(key []byte) bool {
	assertValidKey(key)
	return m.bt.Has(bkey{key})
}

// Set sets the key. Panics on nil key.
func (m *MemStore) Set(key, value []byte) {
	assertValidKey(key)
	m.bt.ReplaceOrInsert(newSetItem(key, value))
}

// Delete deletes the key. Panics on nil key.
func (m *MemStore) Delete(key []byte) {
	assertValidKey(key)
	m.bt.Delete(bkey{key})
}

// Iterator over a domain of keys in ascending order. The result is a
// snapshot, so writes during iteration are safe.
func (m *MemStore) Iterator(start, end []byte) Iterator {
	var data []Model
	visit := func(i btree.Item) bool {
		set := i.(setItem)
		data = append(data, Model{Key: set.key, Value: set.value})
		return true
	}
	switch {
	case start == nil && end == nil:
		m.bt.Ascend(visit)
	case start == nil:
		m.bt.AscendLessThan(bkey{end}, visit)
	case end == nil:
		m.bt.AscendGreaterOrEqual(bkey{start}, visit)
	default:
		m.bt.AscendRange(bkey{start}, bkey{end}, visit)
	}
	return NewSliceIterator(data)
}

// CacheWrap returns a scratch-pad overlay that can be written back or
// discarded as one unit.
func (m *MemStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(m)
}
