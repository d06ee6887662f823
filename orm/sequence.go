package orm

import (
	"encoding/binary"

	"github.com/accord-ledger/accord"
)

// Sequence maintains a counter and generates a series of keys. Each key
// is greater than the last, both as NextInt() and under bytes.Compare()
// on NextVal().
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. The sequence state is stored
// under the key:
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	return Sequence{
		id: []byte("_s." + bucket + ":" + name),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes.
func (s *Sequence) NextVal(db accord.KVStore) []byte {
	_, bz := s.increment(db, 1)
	return bz
}

// NextInt increments the sequence and returns its state as int.
func (s *Sequence) NextInt(db accord.KVStore) int64 {
	val, _ := s.increment(db, 1)
	return val
}

// Latest returns the recently returned value of the sequence without
// modifying its state. Use NextVal or NextInt to acquire a value that
// was not given to anyone else.
func (s *Sequence) Latest(db accord.KVStore) (int64, []byte) {
	return s.increment(db, 0)
}

func (s *Sequence) increment(db accord.KVStore, inc int64) (int64, []byte) {
	raw := db.Get(s.id)
	val := DecodeSequence(raw)
	if inc == 0 {
		return val, raw
	}
	val += inc
	raw = EncodeSequence(val)
	db.Set(s.id, raw)
	return val, raw
}

// DecodeSequence converts the raw sequence state to an integer. Nil
// decodes to zero.
func DecodeSequence(bz []byte) int64 {
	if bz == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

// EncodeSequence converts an integer to the raw sequence state.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}
