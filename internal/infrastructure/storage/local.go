// Package storage implements ports.FileStore on a local filesystem and on
// S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalStore keeps files under a root directory of an afero filesystem.
type LocalStore struct {
	fs   afero.Fs
	root string
}

// NewLocalStore creates root if needed. Pass afero.NewOsFs() in production.
func NewLocalStore(fsys afero.Fs, root string) (*LocalStore, error) {
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local store: create root %s: %w", root, err)
	}
	return &LocalStore{fs: fsys, root: root}, nil
}

func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return afero.Exists(s.fs, path)
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Write streams r into path, replacing any previous content.
func (s *LocalStore) Write(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return afero.WriteReader(s.fs, path, r)
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fs.Open(path)
}
