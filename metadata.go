package accord

import "github.com/accord-ledger/accord/errors"

// Metadata is carried by every persisted model and declares which schema
// version the entity was written with.
type Metadata struct {
	Schema uint32
}

// Validate returns an error if the metadata is not set or invalid.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrEmpty, "metadata")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrInvalidInput, "schema")
	}
	return nil
}

// Copy returns a copy of this object. This is helpful when implementing
// model clone methods to copy the header.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}
