// Package assets loads raw bytes, text and decoded images by relative
// path from an asset root.
package assets

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"darkest/internal/s3tc"
)

var (
	// ErrNotFound means the asset does not exist under the root.
	// Errors wrapping it also match fs.ErrNotExist.
	ErrNotFound = errors.New("asset not found")

	// ErrAbsolutePath means an absolute path was passed where a path
	// relative to the asset root is required.
	ErrAbsolutePath = errors.New("asset path must be relative")
)

// PathError records the asset path an operation failed on.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *PathError) Unwrap() error { return e.Err }

// notFound wraps both ErrNotFound and the underlying fs error.
type notFound struct{ err error }

func (e notFound) Error() string { return ErrNotFound.Error() }

func (e notFound) Unwrap() []error { return []error{ErrNotFound, e.err} }

// Loader reads assets from a file system root. Decoded images are
// cached by path; a Loader is meant for the thread that owns the
// renderer and is not safe for concurrent use.
type Loader struct {
	root   fs.FS
	images map[string]*s3tc.Image
}

// NewLoader returns a Loader reading from root.
func NewLoader(root fs.FS) *Loader {
	return &Loader{
		root:   root,
		images: make(map[string]*s3tc.Image),
	}
}

// NewDirLoader returns a Loader rooted at a directory on disk.
func NewDirLoader(dir string) (*Loader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &PathError{Op: "open root", Path: dir, Err: wrapNotExist(err)}
	}
	if !info.IsDir() {
		return nil, &PathError{Op: "open root", Path: dir, Err: errors.New("not a directory")}
	}
	return NewLoader(os.DirFS(dir)), nil
}

// clean validates p and converts it to an fs.FS path.
func clean(p string) (string, error) {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return "", ErrAbsolutePath
	}
	p = path.Clean(filepath.ToSlash(p))
	if !fs.ValidPath(p) {
		return "", fs.ErrInvalid
	}
	return p, nil
}

func wrapNotExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return notFound{err}
	}
	return err
}

// LoadBytes returns the contents of the asset at p.
func (l *Loader) LoadBytes(p string) ([]byte, error) {
	name, err := clean(p)
	if err != nil {
		return nil, &PathError{Op: "load", Path: p, Err: err}
	}
	data, err := fs.ReadFile(l.root, name)
	if err != nil {
		return nil, &PathError{Op: "load", Path: p, Err: wrapNotExist(err)}
	}
	return data, nil
}

// LoadString returns the contents of the asset at p as text.
func (l *Loader) LoadString(p string) (string, error) {
	data, err := l.LoadBytes(p)
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", &PathError{Op: "load", Path: p, Err: errors.New("text contains NUL byte")}
	}
	return string(data), nil
}

// LoadImage decodes the DDS container at p, returning a cached image if
// it was decoded before.
func (l *Loader) LoadImage(p string) (*s3tc.Image, error) {
	name, err := clean(p)
	if err != nil {
		return nil, &PathError{Op: "decode", Path: p, Err: err}
	}
	if img, ok := l.images[name]; ok {
		return img, nil
	}
	data, err := l.LoadBytes(name)
	if err != nil {
		return nil, err
	}
	img, err := s3tc.Decode(data)
	if err != nil {
		return nil, &PathError{Op: "decode", Path: p, Err: err}
	}
	slog.Debug("decoded image", "path", name, "image", img.String())
	l.images[name] = img
	return img, nil
}

// Forget drops p from the image cache.
func (l *Loader) Forget(p string) {
	if name, err := clean(p); err == nil {
		delete(l.images, name)
	}
}
