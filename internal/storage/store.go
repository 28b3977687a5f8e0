package storage

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/phenocam-tools/phenofetch/internal/archive"
)

// Store writes fetched files under a root directory, one subdirectory per
// file class. Backed by afero so tests run against an in-memory filesystem.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a store rooted at dir on the OS filesystem.
func NewStore(dir string) *Store {
	return &Store{fs: afero.NewOsFs(), root: dir}
}

// NewStoreFs creates a store over an arbitrary filesystem. Used by tests.
func NewStoreFs(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, root: dir}
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// Prepare creates the class subdirectories.
func (s *Store) Prepare() error {
	for _, class := range archive.Classes {
		dir := filepath.Join(s.root, class.Subdir())
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether the file for ref is already present with a
// non-zero size. Zero-byte files count as absent so an interrupted write
// is fetched again.
func (s *Store) Exists(ref archive.FileReference) bool {
	info, err := s.fs.Stat(s.Path(ref))
	if err != nil {
		return false
	}
	return info.Size() > 0
}

// Path returns the final on-disk path for ref.
func (s *Store) Path(ref archive.FileReference) string {
	return filepath.Join(s.root, ref.LocalPath)
}

// Materialize streams body to the ref's path. The write goes to a temp
// file first and is renamed into place, so a partial download never
// shadows a real file.
func (s *Store) Materialize(ref archive.FileReference, body io.Reader) (int64, error) {
	final := s.Path(ref)
	tmp := final + ".tmp"

	f, err := s.fs.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(f, body)
	if err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to write %s: %w", ref.Filename, err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmp, final); err != nil {
		s.fs.Remove(tmp)
		return 0, fmt.Errorf("failed to move %s into place: %w", ref.Filename, err)
	}
	return n, nil
}

// Open returns the stored file for ref.
func (s *Store) Open(ref archive.FileReference) (afero.File, error) {
	return s.fs.Open(s.Path(ref))
}
