// Package ids produces opaque task identifiers.
package ids

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	KindUUID   = "uuid"
	KindNanoID = "nanoid"
)

// Generator returns a fresh identifier on every call.
type Generator interface {
	Next() string
}

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) Next() string { return f() }

// UUID generates random (v4) UUIDs.
type UUID struct{}

func (UUID) Next() string { return uuid.New().String() }

// NanoID generates 21 character URL-safe ids (~126 bits of entropy).
type NanoID struct {
	gen func() string
}

func NewNanoID() (*NanoID, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to create nanoid generator: %w", err)
	}
	return &NanoID{gen: gen}, nil
}

func (n *NanoID) Next() string { return n.gen() }

// New returns the generator for the configured id format. An empty kind
// selects UUIDs.
func New(kind string) (Generator, error) {
	switch kind {
	case "", KindUUID:
		return UUID{}, nil
	case KindNanoID:
		return NewNanoID()
	default:
		return nil, fmt.Errorf("unknown id format: %s", kind)
	}
}
