package accord

import (
	"encoding/json"
	"time"

	"github.com/accord-ledger/accord/errors"
)

// UnixTime represents a point in time as POSIX time. Instead of Go's
// time.Time with nanosecond precision, the engine persists primitive int64
// seconds. Some host ledgers do not support subsecond precision anyway.
type UnixTime int64

// Time returns a time.Time structure that represents the same moment in
// time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AsUnixTime converts given Time structure into its UNIX time
// representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON supports unmarshaling both from a number and from the
// time.Time string format. The latter is convenient in genesis files.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInvalidInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInvalidInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInvalidInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrInvalidState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the
// time.Time structure would.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}

// IsExpired returns true if given time is in the past as compared to the
// "now" declared for the block. Expiration is inclusive, meaning that if
// current time is equal to the expiration time this function returns true.
func IsExpired(ctx Context, t UnixTime) bool {
	now, ok := BlockTime(ctx)
	if !ok {
		panic("block time not set on context")
	}
	return t <= AsUnixTime(now)
}

// EpochHeight counts the host ledger's coarse time units. Proposal
// expiration is measured in epochs rather than wall clock time so the
// cutoff stays deterministic on hosts with irregular block intervals.
type EpochHeight int64

// Reached returns true once the current epoch is at or past e.
func (e EpochHeight) Reached(current EpochHeight) bool {
	return current >= e
}

// Validate returns an error if the epoch cannot serve as an expiration.
// Expirations must be explicitly set, epoch zero never is a deadline.
func (e EpochHeight) Validate() error {
	if e < 1 {
		return errors.Wrap(errors.ErrInvalidInput, "epoch not set")
	}
	return nil
}
