package store

import (
	"bytes"

	"github.com/google/btree"
)

// degree is the branching factor of all btrees in this package.
const degree = 2

// BTreeCacheable adds a btree-based CacheWrap strategy to any KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a BTreeCacheWrap that can later be written to this
// store, or rolled back.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore)
}

// BTreeCacheWrap places a btree overlay over a KVStore. All writes go to
// the overlay until Write copies them to the backing store. Discard drops
// the overlay. Reads and iteration see the overlay merged over the
// backing store.
type BTreeCacheWrap struct {
	bt   *btree.BTree
	back KVStore
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a btree overlay around this store.
func NewBTreeCacheWrap(back KVStore) *BTreeCacheWrap {
	return &BTreeCacheWrap{
		bt:   btree.New(degree),
		back: back,
	}
}

// CacheWrap layers another overlay on top of this one.
func (b *BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b)
}

// Write syncs with the underlying store and then invalidates the wrap.
func (b *BTreeCacheWrap) Write() {
	b.bt.Ascend(func(i btree.Item) bool {
		switch t := i.(type) {
		case setItem:
			b.back.Set(t.key, t.value)
		case deletedItem:
			b.back.Delete(t.key)
		}
		return true
	})
	b.Discard()
}

// Discard invalidates this CacheWrap and releases all cached data.
func (b *BTreeCacheWrap) Discard() {
	b.bt.Clear(false)
}

// Set writes to the overlay.
func (b *BTreeCacheWrap) Set(key, value []byte) {
	assertValidKey(key)
	b.bt.ReplaceOrInsert(newSetItem(key, value))
}

// Delete marks the key deleted in the overlay, shadowing the backing
// store.
func (b *BTreeCacheWrap) Delete(key []byte) {
	assertValidKey(key)
	b.bt.ReplaceOrInsert(newDeletedItem(key))
}

// Get reads from the overlay if present, else the backing store.
func (b *BTreeCacheWrap) Get(key []byte) []byte {
	assertValidKey(key)
	if res := b.bt.Get(bkey{key}); res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value
		case deletedItem:
			return nil
		}
	}
	return b.back.Get(key)
}

// Has reads from the overlay if present, else the backing store.
func (b *BTreeCacheWrap) Has(key []byte) bool {
	assertValidKey(key)
	if res := b.bt.Get(bkey{key}); res != nil {
		switch res.(type) {
		case setItem:
			return true
		case deletedItem:
			return false
		}
	}
	return b.back.Has(key)
}

// Iterator combines results from the overlay and the backing store in
// ascending order. Both inputs arrive sorted, so this is a two-way merge
// with the overlay shadowing the backing store on equal keys.
func (b *BTreeCacheWrap) Iterator(start, end []byte) Iterator {
	var overlay []btree.Item
	visit := func(i btree.Item) bool {
		overlay = append(overlay, i)
		return true
	}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(visit)
	case start == nil:
		b.bt.AscendLessThan(bkey{end}, visit)
	case end == nil:
		b.bt.AscendGreaterOrEqual(bkey{start}, visit)
	default:
		b.bt.AscendRange(bkey{start}, bkey{end}, visit)
	}

	var back []Model
	it := b.back.Iterator(start, end)
	for ; it.Valid(); it.Next() {
		back = append(back, Model{Key: cp(it.Key()), Value: cp(it.Value())})
	}
	it.Close()

	var merged []Model
	i, j := 0, 0
	for i < len(overlay) || j < len(back) {
		var takeOverlay bool
		switch {
		case i == len(overlay):
			takeOverlay = false
		case j == len(back):
			takeOverlay = true
		default:
			cmp := bytes.Compare(overlay[i].(keyer).Key(), back[j].Key)
			if cmp == 0 {
				// overlay shadows the backing store
				j++
			}
			takeOverlay = cmp <= 0
		}

		if takeOverlay {
			if set, ok := overlay[i].(setItem); ok {
				merged = append(merged, Model{Key: set.key, Value: set.value})
			}
			i++
		} else {
			merged = append(merged, back[j])
			j++
		}
	}
	return NewSliceIterator(merged)
}

func assertValidKey(key []byte) {
	if key == nil {
		panic("nil key is not allowed")
	}
}

func cp(bz []byte) []byte {
	out := make([]byte, len(bz))
	copy(out, bz)
	return out
}

// All data in the btree implements keyer so items compare by key.
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item and may be used for queries or
// embedded in data to store.
type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff the second argument is greater than the first.
// Panics if the item to compare doesn't implement keyer.
func (k bkey) Less(item btree.Item) bool {
	cmp := item.(keyer).Key()
	return bytes.Compare(k.key, cmp) < 0
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey: bkey{cp(key)}, value: cp(value)}
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{cp(key)}}
}
