package store

import (
	"io"
	"os"
	"sort"

	"github.com/spf13/afero"
)

// FSStore is a Store backed by an afero filesystem.
type FSStore struct {
	fs afero.Fs
}

// NewFSStore wraps fs as a Store.
func NewFSStore(fs afero.Fs) *FSStore {
	return &FSStore{fs: fs}
}

// NewLocalStore returns a Store rooted at a local directory.
func NewLocalStore(root string) *FSStore {
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// List implements Store.
func (s *FSStore) List(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), IsDir: info.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Open implements Store.
func (s *FSStore) Open(name string) (io.ReadCloser, error) {
	return s.fs.Open(name)
}

// Create implements Store.
func (s *FSStore) Create(name string) (io.WriteCloser, error) {
	return s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

// Mkdir implements Store.
func (s *FSStore) Mkdir(dir string) error {
	return s.fs.MkdirAll(dir, 0o755)
}

// Remove implements Store.
func (s *FSStore) Remove(name string) error {
	return s.fs.Remove(name)
}

// Close implements Store.
func (s *FSStore) Close() error {
	return nil
}
