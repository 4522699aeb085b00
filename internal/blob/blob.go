// Package blob stores uploaded drawings and returns the URI they are served at.
package blob

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrForeignURI is returned by Delete for URIs the store did not issue.
var ErrForeignURI = errors.New("uri not issued by this store")

// Store persists image bytes.
type Store interface {
	// Put stores r under a fresh object name derived from name and returns
	// its public URI. size may be -1 when unknown.
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes the object behind uri.
	Delete(ctx context.Context, uri string) error
}

// objectName keeps the extension of name, or derives one from contentType,
// and replaces the rest with a UUID.
func objectName(name, contentType string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".jpg"
		}
	}
	return uuid.NewString() + ext
}

func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + name
}
