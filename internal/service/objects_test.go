package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakeObjectStore records calls and fails paths listed in failing.
type fakeObjectStore struct {
	mu      sync.Mutex
	deleted []string
	failing map[string]bool
}

func (f *fakeObjectStore) UploadURL(ctx context.Context, path, contentType string) (string, error) {
	return "https://storage.test/put/" + path, nil
}

func (f *fakeObjectStore) DownloadURL(ctx context.Context, path string) (string, error) {
	return "https://storage.test/get/" + path, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[path] {
		return errors.New("simulated storage failure")
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeObjectStore) Exists(ctx context.Context, path string) (bool, error) {
	return true, nil
}

func TestDeleteObjects(t *testing.T) {
	t.Run("deletes every path", func(t *testing.T) {
		objects := &fakeObjectStore{}
		paths := []string{"a.jpg", "b.jpg", "c.jpg"}

		failed := deleteObjects(context.Background(), objects, nil, paths)
		if failed != 0 {
			t.Errorf("failed: got %d, want 0", failed)
		}
		if len(objects.deleted) != len(paths) {
			t.Errorf("deleted: got %d, want %d", len(objects.deleted), len(paths))
		}
	})

	t.Run("counts failures without aborting", func(t *testing.T) {
		objects := &fakeObjectStore{failing: map[string]bool{"b.jpg": true, "d.jpg": true}}
		paths := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}

		failed := deleteObjects(context.Background(), objects, nil, paths)
		if failed != 2 {
			t.Errorf("failed: got %d, want 2", failed)
		}
		if len(objects.deleted) != 2 {
			t.Errorf("deleted: got %d, want 2", len(objects.deleted))
		}
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		objects := &fakeObjectStore{}
		if failed := deleteObjects(context.Background(), objects, nil, nil); failed != 0 {
			t.Errorf("failed: got %d, want 0", failed)
		}
	})

	t.Run("bounded fan-out handles large batches", func(t *testing.T) {
		objects := &fakeObjectStore{}
		paths := make([]string, 100)
		for i := range paths {
			paths[i] = strings.Repeat("x", i%7+1) + ".jpg"
		}

		failed := deleteObjects(context.Background(), objects, nil, paths)
		if failed != 0 {
			t.Errorf("failed: got %d, want 0", failed)
		}
		if len(objects.deleted) != len(paths) {
			t.Errorf("deleted: got %d, want %d", len(objects.deleted), len(paths))
		}
	})
}

func TestResolveDownloadURL(t *testing.T) {
	objects := &fakeObjectStore{}
	url, err := resolveDownloadURL(context.Background(), objects, nil, "runs/pending/x.jpg")
	if err != nil {
		t.Fatalf("resolveDownloadURL: %v", err)
	}
	if url != "https://storage.test/get/runs/pending/x.jpg" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestNoStorage(t *testing.T) {
	ns := NoStorage{}
	ctx := context.Background()

	if _, err := ns.UploadURL(ctx, "p", "image/jpeg"); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("UploadURL: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := ns.DownloadURL(ctx, "p"); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("DownloadURL: expected ErrStorageUnavailable, got %v", err)
	}
	if err := ns.Delete(ctx, "p"); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("Delete: expected ErrStorageUnavailable, got %v", err)
	}
}
