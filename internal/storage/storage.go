// internal/storage/storage.go

// Package storage keeps uploaded images. Objects are addressed by keys such
// as "file/images/<uuid>.png".
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

const ImagePrefix = "file/images/"

var ErrObjectNotFound = errors.New("object not found")

// ImageStore is implemented by the local and MinIO backends.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL returns the address a client can fetch key from.
	URL(ctx context.Context, key string) (string, error)
}

// GenerateObjectName creates a unique image key keeping the upload's extension.
func GenerateObjectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s%s%s", ImagePrefix, uuid.New().String(), ext)
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	cleaned := path.Clean(key)
	if key == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || cleaned != key {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
