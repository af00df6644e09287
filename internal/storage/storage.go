package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"time"
)

// Package storage contains file/object storage abstractions and utilities for object stores (S3-compatible).
// Implementations must avoid using local disk and rely on streaming I/O only.

var (
	// ErrObjectExists is returned by Put when the key is already taken.
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound is returned when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType, CacheControl and Metadata are optional.
type PutObjectOptions struct {
	Size         int64
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Objects are private; reads go through presigned URLs.
type Storage interface {
	// Put uploads an object under the given key. It never overwrites: an
	// existing key fails with ErrObjectExists.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	// It fails with ErrObjectNotFound if the key does not exist. A non-empty downloadName
	// is returned to the browser as the attachment file name.
	PresignGet(ctx context.Context, key string, expiry time.Duration, downloadName string) (string, error)
}

// contentDisposition builds an attachment header for name, RFC 2231-encoding
// non-ASCII names.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
