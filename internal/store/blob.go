// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileBlobStore is the filesystem-backed implementation of [BlobStore].
// Every payload handed to it is already encrypted by the attachment
// pipeline, so blobs are written with plain file permissions.
type fileBlobStore struct {
	dir string
}

// NewFileBlobStore constructs a [BlobStore] rooted at dir, creating it when
// necessary.
func NewFileBlobStore(dir string) (BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &fileBlobStore{dir: dir}, nil
}

// Put implements [BlobStore].
func (s *fileBlobStore) Put(_ context.Context, ref string, data []byte) error {
	path := filepath.Join(s.dir, filepath.Base(ref))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace blob: %w", err)
	}
	return nil
}

// Get implements [BlobStore].
func (s *fileBlobStore) Get(_ context.Context, ref string) ([]byte, error) {
	path := filepath.Join(s.dir, filepath.Base(ref))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// memoryBlobStore is the in-memory implementation of [BlobStore] used by
// tests and ephemeral sessions.
type memoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore constructs an empty in-memory [BlobStore].
func NewMemoryBlobStore() BlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

// Put implements [BlobStore].
func (s *memoryBlobStore) Put(_ context.Context, ref string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[ref] = append([]byte(nil), data...)
	return nil
}

// Get implements [BlobStore].
func (s *memoryBlobStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[ref]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}
