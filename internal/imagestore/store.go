// Package imagestore reads product image bytes by key so the catalogue can
// register them with the AI collaborator and the search handlers can accept
// a stored key as query input.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Store defines the interface for reading stored product images.
type Store interface {
	// Fetch returns the image bytes for a key.
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// fileStore implements Store against a local directory.
type fileStore struct {
	baseDir string
	logger  zerolog.Logger
}

// NewFileStore creates a local-filesystem image store rooted at baseDir.
func NewFileStore(baseDir string, logger zerolog.Logger) Store {
	return &fileStore{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "image-store").Logger(),
	}
}

// Fetch reads the image file for a key. Keys are confined to the base
// directory; traversal outside it is rejected.
func (s *fileStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	path := filepath.Join(s.baseDir, filepath.Clean("/"+key))
	if !strings.HasPrefix(path, filepath.Clean(s.baseDir)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("invalid image key: %s", key)
	}

	file, err := os.Open(path)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to open image file")
		return nil, fmt.Errorf("failed to open image %s: %w", key, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read image file")
		return nil, fmt.Errorf("failed to read image %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("image loaded from file system")
	return data, nil
}

// fallbackStore tries S3 first and falls back to the local file system.
type fallbackStore struct {
	s3Store   Store
	fileStore Store
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that tries S3 first, then the local file
// system. If s3Store is nil only the file store is used.
func NewFallbackStore(s3Store, fileStore Store, logger zerolog.Logger) Store {
	return &fallbackStore{
		s3Store:   s3Store,
		fileStore: fileStore,
		logger:    logger.With().Str("component", "fallback-image-store").Logger(),
	}
}

// Fetch attempts S3 first, then the local file system.
func (s *fallbackStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if s.s3Store != nil {
		data, err := s.s3Store.Fetch(ctx, key)
		if err == nil {
			return data, nil
		}
		s.logger.Warn().Err(err).Str("key", key).Msg("S3 fetch failed, falling back to local file system")
	}

	return s.fileStore.Fetch(ctx, key)
}
