package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/inkwell-press/apiserver/config"
)

func newLocal(t *testing.T) *Storage {
	t.Helper()
	client, err := NewLocalClient(config.LocalStorageConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new local client: %v", err)
	}
	s := NewStorage(client)
	if err := s.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	return s
}

func TestLocalPutGetDelete(t *testing.T) {
	s := newLocal(t)
	data := []byte("image bytes")

	if err := s.Put(context.Background(), "a.png", bytes.NewReader(data), int64(len(data)), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}

	reader, err := s.Get(context.Background(), "a.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("roundtrip mismatch: %q", got)
	}

	if err := s.Delete(context.Background(), "a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(context.Background(), "a.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalGetMissing(t *testing.T) {
	s := newLocal(t)

	if _, err := s.Get(context.Background(), "missing.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalRejectsTraversalKeys(t *testing.T) {
	s := newLocal(t)

	if _, err := s.Get(context.Background(), "../escape"); err == nil {
		t.Fatalf("expected error for traversal key")
	}
	if err := s.Put(context.Background(), "/abs", bytes.NewReader(nil), 0, ""); err == nil {
		t.Fatalf("expected error for absolute key")
	}
}
