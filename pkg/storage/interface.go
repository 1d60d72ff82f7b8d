package storage

import (
	"context"
	"errors"
	"io"
)

// ErrForeignURL is returned by KeyFromURL when the URL was not produced
// by the backend being asked.
var ErrForeignURL = errors.New("url does not belong to this storage")

// Storage is a blob store addressed by slash-separated keys.
type Storage interface {
	// Write stores r under key. size is -1 when unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL clients can fetch the object from.
	URL(ctx context.Context, key string) (string, error)

	// KeyFromURL reverses URL.
	KeyFromURL(rawURL string) (string, error)
}
