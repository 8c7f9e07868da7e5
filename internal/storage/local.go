package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell-press/apiserver/config"
)

// LocalClient stores objects as files under a base directory. It is the
// default backend for development and tests.
type LocalClient struct {
	dir string
}

// NewLocalClient constructs a filesystem-backed storage client.
func NewLocalClient(cfg config.LocalStorageConfig) (*LocalClient, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("local storage dir is required")
	}
	return &LocalClient{dir: cfg.Dir}, nil
}

// EnsureBucket creates the base directory if it does not exist.
func (l *LocalClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes an object to a file under the base directory. Keys that
// escape the directory are rejected.
func (l *LocalClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// Get opens the file backing an object.
func (l *LocalClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := l.objectPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the file backing an object.
func (l *LocalClient) Delete(ctx context.Context, key string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Bucket returns the base directory.
func (l *LocalClient) Bucket() string {
	return l.dir
}

func (l *LocalClient) objectPath(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(l.dir, clean), nil
}

// ErrObjectNotFound is returned when the requested object is absent.
var ErrObjectNotFound = errors.New("object not found")
