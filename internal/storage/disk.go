// Package storage abstracts the file object store. The chat service only
// ever hands bytes over and gets a reachable URL back.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore accepts an upload and returns the URL clients embed in
// subsequent chat messages.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (url string, err error)
}

// DiskStore is the reference-deployment object store: files land under a
// base directory served as static content by the HTTP server.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put stores the object under a random name, keeping the original extension
// so static file serving picks a sensible content type.
func (s *DiskStore) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))

	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.baseURL + "/" + stored, nil
}
