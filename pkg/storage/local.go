package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalConfig holds configuration for local storage.
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"`
	// PublicURL is the prefix the HTTP server serves BasePath under.
	PublicURL string `mapstructure:"public_url"`
}

// LocalStorage stores objects on the local filesystem.
type LocalStorage struct {
	basePath  string
	publicURL string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = "/media"
	}

	return &LocalStorage{basePath: absPath, publicURL: publicURL}, nil
}

// fullPath maps a key under basePath, refusing keys that escape it.
func (s *LocalStorage) fullPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Write stores content through a temp file and rename so readers never
// observe a partial object.
func (s *LocalStorage) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := s.fullPath(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	committed = true
	return nil
}

// Delete removes the object for key.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether key is stored.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.fullPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// URL returns the path the HTTP server exposes key under.
func (s *LocalStorage) URL(ctx context.Context, key string) (string, error) {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/"), nil
}

// KeyFromURL strips the public prefix.
func (s *LocalStorage) KeyFromURL(rawURL string) (string, error) {
	key, ok := strings.CutPrefix(rawURL, s.publicURL+"/")
	if !ok || key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}

// BasePath returns the directory objects are stored under.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// PublicURL returns the prefix objects are served under.
func (s *LocalStorage) PublicURL() string {
	return s.publicURL
}

var _ Storage = (*LocalStorage)(nil)
