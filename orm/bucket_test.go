package orm

import (
	"bytes"
	"testing"

	amino "github.com/tendermint/go-amino"

	"github.com/accord-ledger/accord/errors"
	"github.com/accord-ledger/accord/store"
)

type counterModel struct {
	Count int64
}

func (c *counterModel) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInvalidModel, "negative counter")
	}
	return nil
}

func TestModelBucketPutGetDelete(t *testing.T) {
	db := store.NewMemStore()
	b := NewModelBucket("cnts", amino.NewCodec())

	key := []byte("first")
	if err := b.Put(db, key, &counterModel{Count: 42}); err != nil {
		t.Fatalf("cannot put: %+v", err)
	}

	var loaded counterModel
	if err := b.One(db, key, &loaded); err != nil {
		t.Fatalf("cannot load: %+v", err)
	}
	if loaded.Count != 42 {
		t.Fatalf("want 42, got %d", loaded.Count)
	}

	if !b.Has(db, key) {
		t.Fatal("expected key present")
	}
	if err := b.Delete(db, key); err != nil {
		t.Fatalf("cannot delete: %+v", err)
	}
	if err := b.One(db, key, &loaded); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
	if err := b.Delete(db, key); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found on double delete, got %+v", err)
	}
}

func TestModelBucketRejectsInvalid(t *testing.T) {
	db := store.NewMemStore()
	b := NewModelBucket("cnts", amino.NewCodec())

	if err := b.Put(db, []byte("bad"), &counterModel{Count: -1}); !errors.ErrInvalidModel.Is(err) {
		t.Fatalf("want invalid model, got %+v", err)
	}
	if b.Has(db, []byte("bad")) {
		t.Fatal("invalid model must not be persisted")
	}
}

func TestModelBucketIterateIsOrdered(t *testing.T) {
	db := store.NewMemStore()
	b := NewModelBucket("cnts", amino.NewCodec())

	// insert out of order
	for i, key := range []string{"charlie", "alpha", "bravo"} {
		if err := b.Put(db, []byte(key), &counterModel{Count: int64(i)}); err != nil {
			t.Fatalf("cannot put: %+v", err)
		}
	}
	// a neighboring bucket must not leak into the iteration
	other := NewModelBucket("cntsx", amino.NewCodec())
	if err := other.Put(db, []byte("zulu"), &counterModel{Count: 99}); err != nil {
		t.Fatalf("cannot put: %+v", err)
	}

	var keys []string
	it := b.Iterate(db, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(b.ParseKey(it.Key())))
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(keys) != len(want) {
		t.Fatalf("want %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("want %v, got %v", want, keys)
		}
	}
}

func TestModelBucketIteratePrefix(t *testing.T) {
	db := store.NewMemStore()
	b := NewModelBucket("cnts", amino.NewCodec())

	for _, key := range []string{"a/1", "a/2", "b/1"} {
		if err := b.Put(db, []byte(key), &counterModel{}); err != nil {
			t.Fatalf("cannot put: %+v", err)
		}
	}

	var n int
	it := b.Iterate(db, []byte("a/"))
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if !bytes.HasPrefix(b.ParseKey(it.Key()), []byte("a/")) {
			t.Fatalf("unexpected key: %q", it.Key())
		}
		n++
	}
	if n != 2 {
		t.Fatalf("want 2 entries, got %d", n)
	}
}

func TestSequence(t *testing.T) {
	db := store.NewMemStore()
	seq := NewSequence("cnts", "id")

	if val := seq.NextInt(db); val != 1 {
		t.Fatalf("want 1, got %d", val)
	}
	prev := seq.NextVal(db)
	next := seq.NextVal(db)
	if bytes.Compare(prev, next) >= 0 {
		t.Fatalf("sequence values must be strictly increasing: %X then %X", prev, next)
	}
	if latest, _ := seq.Latest(db); latest != 3 {
		t.Fatalf("want 3, got %d", latest)
	}
}
