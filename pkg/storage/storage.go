package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// Object is an open handle on a stored file. Callers must close Body.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Store fetches and publishes pre-rendered report and document files.
type Store interface {
	Open(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}
