package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"runvault/internal/cache"
)

// ObjectStore is the object-storage collaborator consumed by services.
// Implemented by storage.Client; tests substitute fakes.
type ObjectStore interface {
	UploadURL(ctx context.Context, path, contentType string) (string, error)
	DownloadURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// NoStorage is the ObjectStore wired in when no S3 endpoint is
// configured. Every operation fails with ErrStorageUnavailable so the
// rest of the API keeps working.
type NoStorage struct{}

func (NoStorage) UploadURL(ctx context.Context, path, contentType string) (string, error) {
	return "", ErrStorageUnavailable
}

func (NoStorage) DownloadURL(ctx context.Context, path string) (string, error) {
	return "", ErrStorageUnavailable
}

func (NoStorage) Delete(ctx context.Context, path string) error {
	return ErrStorageUnavailable
}

func (NoStorage) Exists(ctx context.Context, path string) (bool, error) {
	return false, ErrStorageUnavailable
}

// deleteObjectLimit bounds concurrent object-store deletes so a large
// folder cannot fan out unbounded requests.
const deleteObjectLimit = 8

// deleteObjects removes storage objects in bounded parallel. Individual
// failures are logged and counted, never fatal: a storage object that
// outlives its metadata row is an acceptable leak, the inverse is not.
func deleteObjects(ctx context.Context, objects ObjectStore, urls *cache.URLCache, paths []string) int {
	if len(paths) == 0 {
		return 0
	}

	var failed int
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteObjectLimit)

	results := make([]bool, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := objects.Delete(ctx, path); err != nil {
				slog.Warn("storage object delete failed", "path", path, "error", err)
				results[i] = true
				return nil
			}
			urls.Invalidate(ctx, path)
			return nil
		})
	}
	g.Wait()

	for _, f := range results {
		if f {
			failed++
		}
	}
	return failed
}

// resolveDownloadURL returns a read URL for a storage path, consulting
// the URL cache before asking the object store to sign one.
func resolveDownloadURL(ctx context.Context, objects ObjectStore, urls *cache.URLCache, path string) (string, error) {
	if url, ok := urls.Get(ctx, path); ok {
		return url, nil
	}
	url, err := objects.DownloadURL(ctx, path)
	if err != nil {
		return "", err
	}
	urls.Set(ctx, path, url)
	return url, nil
}
