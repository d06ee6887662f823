package accord

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/accord-ledger/accord/errors"
)

// AddressLength is the length of all addresses. It must not change during
// the lifetime of a store.
const AddressLength = 20

// addressPrefix is the human readable part used for the bech32
// representation of an address.
const addressPrefix = "acct"

// it must have (?s) flags, otherwise it errors when the data section
// contains 0x20 (newline)
var validCondition = regexp.MustCompile(`(?s)^([a-z0-9_\-]{3,10})/([a-z0-9_\-]{3,10})/(.+)$`)

// Condition is a specially formatted byte array describing who controls an
// address. It is of the format:
//
//   sprintf("%s/%s/%s", extension, type, data)
//
// Deriving module owned addresses (a treasury held by an account, for
// example) from conditions keeps them collision free without a central
// allocator.
type Condition []byte

// NewCondition composes a condition out of its three sections.
func NewCondition(ext, typ string, data []byte) Condition {
	pre := fmt.Sprintf("%s/%s/", ext, typ)
	return append([]byte(pre), data...)
}

// Parse splits the condition into its sections and verifies the format.
func (c Condition) Parse() (string, string, []byte, error) {
	chunks := validCondition.FindSubmatch(c)
	if len(chunks) == 0 {
		return "", "", nil, errors.Wrapf(errors.ErrInvalidInput, "condition: %X", []byte(c))
	}
	return string(chunks[1]), string(chunks[2]), chunks[3], nil
}

// Address returns the one-way digest of this condition.
func (c Condition) Address() Address {
	return NewAddress(c)
}

// Equals checks if two conditions are identical.
func (c Condition) Equals(other Condition) bool {
	return bytes.Equal(c, other)
}

// Validate returns an error if the condition is not properly formatted.
func (c Condition) Validate() error {
	if !validCondition.Match(c) {
		return errors.Wrapf(errors.ErrInvalidInput, "condition: %X", []byte(c))
	}
	return nil
}

func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Address represents a collision-free, one-way digest of a condition. It
// is always of size AddressLength.
type Address []byte

// NewAddress hashes given data into an address. A nil input produces a nil
// address.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	h := sha256.Sum256(data)
	return h[:AddressLength]
}

// Equals checks if two addresses are the same.
func (a Address) Equals(other Address) bool {
	return bytes.Equal(a, other)
}

// Validate returns an error if the address is not the expected size.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInvalidInput, "invalid address length: %X", []byte(a))
	}
	return nil
}

// String returns the bech32 representation of this address, falling back
// to hex if the payload cannot be bech32 encoded (wrong size input).
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	payload, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return fmt.Sprintf("%X", []byte(a))
	}
	enc, err := bech32.Encode(addressPrefix, payload)
	if err != nil {
		return fmt.Sprintf("%X", []byte(a))
	}
	return enc
}

// ParseAddress decodes a bech32 encoded address.
func ParseAddress(enc string) (Address, error) {
	hrp, payload, err := bech32.Decode(enc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "bech32 decode")
	}
	if hrp != addressPrefix {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "wrong address prefix: %q", hrp)
	}
	raw, err := bech32.ConvertBits(payload, 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "convert bits")
	}
	a := Address(raw)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// MarshalJSON encodes the address as an upper case hex string. Hex is kept
// for machine interfaces (genesis files); bech32 is the display format.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(a))
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "cannot decode json")
	}
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	val, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "malformed address")
	}
	*a = val
	return nil
}
