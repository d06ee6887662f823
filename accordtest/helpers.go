/*
Package accordtest provides shared helpers for tests: deterministic
identities and preconfigured contexts. It must stay free of engine
imports so engine tests can use it without a cycle.
*/
package accordtest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/store"
)

// SequenceAddress returns a deterministic address derived from the given
// index. Two calls with the same index always return the same address.
func SequenceAddress(i int) accord.Address {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(i))
	h := sha256.Sum256(raw)
	return accord.Address(h[:accord.AddressLength])
}

// NewContext returns a context carrying the given host declared state.
// Pass a nil sender for an unauthenticated context.
func NewContext(now time.Time, epoch accord.EpochHeight, sender accord.Address) accord.Context {
	ctx := context.Background()
	ctx = accord.WithBlockTime(ctx, now)
	ctx = accord.WithEpoch(ctx, epoch)
	if sender != nil {
		ctx = accord.WithSender(ctx, sender)
	}
	return ctx
}

// Store returns an empty in-memory store suitable for a single test.
func Store() *store.MemStore {
	return store.NewMemStore()
}
