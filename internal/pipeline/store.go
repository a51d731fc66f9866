package pipeline

import (
	"errors"
	"fmt"

	"darkest/internal/resource"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownType means a handle's type tag names no store.
	ErrUnknownType = errors.New("pipeline: unknown resource type")

	// ErrOutOfRange means a handle's index is past the end of its store.
	ErrOutOfRange = errors.New("pipeline: resource index out of range")

	// ErrStale means the handle was issued before its store was last
	// repopulated.
	ErrStale = errors.New("pipeline: stale resource handle")
)

type gpuMesh interface {
	Draw()
	Release()
}

type gpuTextures interface {
	Bind()
	Release()
}

// instance is one drawable entry of a store.
type instance[M gpuMesh, T gpuTextures] struct {
	mesh     M
	textures T
	model    mgl32.Mat4
	normal   mgl32.Mat4
}

func (in *instance[M, T]) release() {
	in.mesh.Release()
	in.textures.Release()
}

// store is the backing storage of one resource variant. Entries are
// addressed by index; the generation changes whenever the store is
// repopulated so that handles into the previous contents are rejected.
type store[M gpuMesh, T gpuTextures] struct {
	tag        resource.Type
	generation uint32
	instances  []instance[M, T]
}

// reset releases every entry and starts a new generation.
func (s *store[M, T]) reset() {
	s.clear()
	s.generation++
}

func (s *store[M, T]) clear() {
	for i := range s.instances {
		s.instances[i].release()
	}
	s.instances = nil
}

// add appends an entry with identity matrices and returns its handle.
func (s *store[M, T]) add(mesh M, textures T) (resource.Handle, error) {
	id, err := resource.NewID(s.tag, len(s.instances))
	if err != nil {
		return resource.Handle{}, err
	}
	s.instances = append(s.instances, instance[M, T]{
		mesh:     mesh,
		textures: textures,
		model:    mgl32.Ident4(),
		normal:   mgl32.Ident4(),
	})
	return resource.Handle{ID: id, Generation: s.generation}, nil
}

func (s *store[M, T]) get(h resource.Handle) (*instance[M, T], error) {
	if h.Generation != s.generation {
		return nil, fmt.Errorf("%w: %s, store is at generation %d", ErrStale, h, s.generation)
	}
	i := h.ID.Index()
	if i >= len(s.instances) {
		return nil, fmt.Errorf("%w: %s, store holds %d", ErrOutOfRange, h, len(s.instances))
	}
	return &s.instances[i], nil
}
