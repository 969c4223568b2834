// =============================================================================
// Loyalty Card Report - File Store
// =============================================================================
//
// The pipeline reads source workbooks from, and archives them into, a shared
// location. This package hides where that location lives behind Store:
//   - SMBStore: a Windows/Samba share (production)
//   - FSStore:  any afero filesystem (local directories, in-memory in tests)
//
// PATHS:
//   Paths are slash-separated and relative to the store root.
//
// =============================================================================

package store

import (
	"fmt"
	"io"
	"path"
	"strings"
)

// Store is a directory + byte-stream abstraction over the shared location.
type Store interface {
	// List returns the names of the entries in dir, sorted by name.
	List(dir string) ([]Entry, error)

	// Open opens a file for reading.
	Open(name string) (io.ReadCloser, error)

	// Create creates or truncates a file for writing.
	Create(name string) (io.WriteCloser, error)

	// Mkdir creates dir and any missing parents. An existing dir is reused.
	Mkdir(dir string) error

	// Remove deletes a file.
	Remove(name string) error

	// Close releases the connection to the store.
	Close() error
}

// Entry is one item of a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// Join joins slash-separated store path elements.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// HasExtension reports whether name ends in ext, ignoring case.
func HasExtension(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

// Copy copies the file at src to dst within the same store.
func Copy(s Store, src, dst string) error {
	in, err := s.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	return Upload(s, in, dst)
}

// Upload writes the contents of r to dst in the store.
func Upload(s Store, r io.Reader, dst string) error {
	out, err := s.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
