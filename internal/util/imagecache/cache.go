// Package imagecache keeps a local copy of remote images so repeated
// distillations of the same URL do not refetch it.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/distil/internal/security"
	httputil "github.com/jmylchreest/distil/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where images will be cached.
	// If empty, defaults to ~/.cache/distil/images
	CacheDir string

	// Refresh forces a refetch even when a cached copy exists.
	Refresh bool

	// Fetch overrides the fetch options used on a cache miss.
	Fetch httputil.FetchOptions
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "distil", "images"), nil
	}
	return filepath.Join(cacheDir, "distil", "images"), nil
}

// Key returns the deterministic cache filename for url: a SHA256 prefix
// plus the URL's extension, so compressed payloads keep their suffix.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}

	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// Fetch returns the bytes for url, serving them from the cache when possible.
// The returned path is where the cached copy lives.
func Fetch(ctx context.Context, url string, opts CacheOptions) ([]byte, string, error) {
	if !security.IsRemote(url) {
		return nil, "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return nil, "", err
		}
		cacheDir = defaultDir
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return nil, "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(cacheDir, Key(url))

	if !opts.Refresh {
		if data, err := os.ReadFile(cachedPath); err == nil { // #nosec G304 - Path derived from URL hash
			return data, cachedPath, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, opts.Fetch)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return nil, "", fmt.Errorf("failed to write cached image: %w", err)
	}

	return data, cachedPath, nil
}
