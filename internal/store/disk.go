package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ecomstack/backend/internal/models"
)

// DiskStore keeps uploaded images as files in a single directory.
// Keys are flat file names; any directory part is stripped.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean("/"+key)))
}

// Upload writes the file, refusing to overwrite an existing one.
func (s *DiskStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("write %s: %w", key, models.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *DiskStore) Download(_ context.Context, key string) ([]byte, string, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", models.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", key, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}
