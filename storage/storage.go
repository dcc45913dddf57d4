/*
Package storage provides access to the removable media holding the image
files.

On the target hardware the card is mounted by the OS before the process
starts, so Mount only verifies the mount point is present and usable.
Listing preserves the directory enumeration order and skips hidden entries,
otherwise we end up fighting with things like desktop indexers leaving
droppings on the card.
*/
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotMounted is returned when the store is used before a successful
// Mount.
var ErrNotMounted = errors.New("storage: not mounted")

// FileStore reads image files from a mounted filesystem.
type FileStore struct {
	mountPoint string
	mounted    bool
}

func New(mountPoint string) *FileStore {
	return &FileStore{
		mountPoint: mountPoint,
	}
}

// Mount checks that the mount point exists and is a directory.
func (s *FileStore) Mount() error {
	info, err := os.Stat(s.mountPoint)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage: %s is not a directory", s.mountPoint)
	}
	s.mounted = true
	return nil
}

// List returns the names of the entries in dir, relative to the mount
// point, in directory enumeration order. Hidden entries are skipped.
func (s *FileStore) List(dir string) ([]string, error) {
	if !s.mounted {
		return nil, ErrNotMounted
	}

	d, err := os.Open(filepath.Join(s.mountPoint, dir))
	if err != nil {
		return nil, err
	}
	defer d.Close()

	names, err := d.Readdirnames(0)
	if err != nil {
		return nil, err
	}

	files := names[:0]
	for _, name := range names {
		if name[0] == '.' {
			continue
		}
		files = append(files, name)
	}

	return files, nil
}

// Size returns the size in bytes of the named file.
func (s *FileStore) Size(path string) (int64, error) {
	if !s.mounted {
		return 0, ErrNotMounted
	}

	info, err := os.Stat(filepath.Join(s.mountPoint, path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Read fills p from the start of the named file and returns the number of
// bytes read. A file larger than p yields only the first len(p) bytes;
// callers detect the short read by comparing against Size.
func (s *FileStore) Read(path string, p []byte) (int, error) {
	if !s.mounted {
		return 0, ErrNotMounted
	}

	f, err := os.Open(filepath.Join(s.mountPoint, path))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.ReadFull(f, p)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return n, err
}
