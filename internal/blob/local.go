package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Compile-time check to ensure LocalStore implements Store
var _ Store = (*LocalStore)(nil)

// LocalStore writes files under a directory that the HTTP server exposes at
// publicBase.
type LocalStore struct {
	dir        string
	publicBase string
	logger     *zap.Logger
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, publicBase string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, publicBase: publicBase, logger: logger.Named("LocalBlob")}, nil
}

// Dir is the directory files are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(ctx context.Context, name, contentType string, r io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fileName := objectName(name, contentType)
	path := filepath.Join(s.dir, fileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Error("Failed to create file", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		s.logger.Error("Failed to write file", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	uri := joinURL(s.publicBase, fileName)
	s.logger.Info("Image saved to file", zap.String("path", path), zap.Int64("bytes", n), zap.String("uri", uri))
	return uri, nil
}

func (s *LocalStore) Delete(_ context.Context, uri string) error {
	prefix := strings.TrimRight(s.publicBase, "/") + "/"
	if !strings.HasPrefix(uri, prefix) {
		return ErrForeignURI
	}
	name := strings.TrimPrefix(uri, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return ErrForeignURI
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
