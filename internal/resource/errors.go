package resource

import (
	"errors"
	"fmt"

	"darkest/internal/gpu"
)

// ErrAllocation is returned when the device hands out a zero object name.
var ErrAllocation = errors.New("resource: gpu object allocation failed")

// GLError reports an error flag raised while uploading.
type GLError struct {
	Op   string
	Code uint32
}

func (e *GLError) Error() string { return e.Op + ": " + gpu.ErrorString(e.Code) }

// maxErrorFlags bounds the GetError drain; GL keeps at most one flag
// per error kind.
const maxErrorFlags = 8

// takeError clears every pending error flag and returns the first one.
func takeError(dev gpu.Device) uint32 {
	first := uint32(gpu.NoError)
	for range maxErrorFlags {
		code := dev.GetError()
		if code == gpu.NoError {
			break
		}
		if first == gpu.NoError {
			first = code
		}
	}
	return first
}

// checkNames fails when any name in names is zero.
func checkNames(kind string, names []uint32) error {
	for _, n := range names {
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrAllocation, kind)
		}
	}
	return nil
}

// nonZero returns the names that were actually allocated.
func nonZero(names []uint32) []uint32 {
	out := make([]uint32, 0, len(names))
	for _, n := range names {
		if n != 0 {
			out = append(out, n)
		}
	}
	return out
}
