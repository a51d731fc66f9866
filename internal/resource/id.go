// Package resource uploads meshes and compressed textures to the GPU
// and identifies them with packed resource IDs.
package resource

import (
	"errors"
	"fmt"
)

// Type tags which store a resource lives in.
type Type uint8

const (
	TypeBasic        Type = 24
	TypeNormalMapped Type = 25
)

func (t Type) String() string {
	switch t {
	case TypeBasic:
		return "basic"
	case TypeNormalMapped:
		return "normal-mapped"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

const (
	indexBits = 24

	// MaxIndex is the largest index an ID can carry.
	MaxIndex = 1<<indexBits - 1
)

// ErrIndexOverflow is returned by NewID for indices above MaxIndex.
var ErrIndexOverflow = errors.New("resource: index overflows 24 bits")

// ID packs a type tag in the high 8 bits and a store index in the low 24.
type ID uint32

// NewID packs t and index.
func NewID(t Type, index int) (ID, error) {
	if index < 0 || index > MaxIndex {
		return 0, fmt.Errorf("%w: %d", ErrIndexOverflow, index)
	}
	return ID(uint32(t)<<indexBits | uint32(index)), nil
}

// Type returns the tag in the high 8 bits.
func (id ID) Type() Type { return Type(id >> indexBits) }

// Index returns the low 24 bits.
func (id ID) Index() int { return int(id & MaxIndex) }

func (id ID) String() string {
	return fmt.Sprintf("%s#%d", id.Type(), id.Index())
}

// Handle is an ID together with the generation of the store that issued
// it. A store bumps its generation every time it is repopulated, which
// makes handles from earlier generations detectably stale.
type Handle struct {
	ID         ID
	Generation uint32
}

func (h Handle) String() string { return fmt.Sprintf("%s@%d", h.ID, h.Generation) }
