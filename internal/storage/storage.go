// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package storage is a local-disk blob store keyed by relative path,
// with public URL derivation. It stands in for the managed bucket the
// deployed system uses.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidPath rejects keys that would escape the store root.
var ErrInvalidPath = errors.New("invalid storage path")

// Store persists blobs under a root directory.
type Store struct {
	dir        string
	publicPath string
}

// New creates a store rooted at dir, serving files under publicPath.
func New(dir, publicPath string) *Store {
	return &Store{dir: dir, publicPath: strings.TrimSuffix(publicPath, "/")}
}

// Dir returns the root directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a blob under the given key.
func (s *Store) Save(key string, r io.Reader) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("creating blob: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("writing blob: %w", err)
	}
	return nil
}

// Remove deletes a blob. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

// PublicURL derives the URL path a blob is served under.
func (s *Store) PublicURL(key string) string {
	return s.publicPath + "/" + path.Clean(key)
}

func (s *Store) resolve(key string) (string, error) {
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, filepath.FromSlash(cleaned)), nil
}
