// Package image provides utilities for loading and decoding images.
package image

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/distil/internal/compression"
	"github.com/jmylchreest/distil/internal/security"
	httputil "github.com/jmylchreest/distil/internal/util/http"
	"github.com/jmylchreest/distil/internal/util/imagecache"
)

// MaxImageBytes caps how many bytes a loader will hand to the decoder,
// measured after decompression.
const MaxImageBytes = 256 << 20

// Loader reads encoded image bytes from a source.
type Loader interface {
	// Load returns the encoded (and, if necessary, decompressed) image bytes.
	Load(path string) ([]byte, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads an image file. Files compressed with xz, gzip or bzip2 are
// decompressed transparently.
func (l *FileLoader) Load(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(security.NewLimitedReader(file, MaxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return compression.Decompress(data, path, MaxImageBytes)
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	cache      *imagecache.CacheOptions
	ctx        context.Context
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		ctx:        context.Background(),
	}
}

// WithCache enables on-disk caching of remote images.
func (l *SmartLoader) WithCache(opts imagecache.CacheOptions) *SmartLoader {
	l.cache = &opts
	return l
}

// WithContext sets the context used for remote fetches.
func (l *SmartLoader) WithContext(ctx context.Context) *SmartLoader {
	l.ctx = ctx
	return l
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(path string) ([]byte, error) {
	if security.IsRemote(path) {
		return l.loadFromURL(path)
	}
	return l.fileLoader.Load(path)
}

func (l *SmartLoader) loadFromURL(url string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if l.cache != nil {
		data, _, err = imagecache.Fetch(l.ctx, url, *l.cache)
	} else {
		data, err = httputil.Fetch(l.ctx, url, httputil.FetchOptions{MaxBytes: MaxImageBytes})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	return compression.Decompress(data, url, MaxImageBytes)
}

// ValidateImagePath checks if the given path is valid and points to a supported image file or directory.
// For HTTP(S) URLs only the URL shape is validated; fetching happens later.
// For plain local files the magic bytes must identify a PNG or JPEG.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	if security.IsRemote(path) {
		return security.ValidateImageURL(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}

	if info.IsDir() {
		return nil
	}

	// Compressed payloads are sniffed after decompression, at load time.
	if compression.IsCompressed(path) {
		return nil
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read image header: %w", err)
	}

	if _, err := Sniff(head[:n]); err != nil {
		return fmt.Errorf("unsupported image %s: %w", path, err)
	}

	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

// isImageFile checks if a file has a supported image extension, optionally
// followed by a compression extension (e.g. "wall.png.xz").
func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(compression.TrimExtension(path)))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages scans a directory and returns all valid image files.
// It does not recurse into subdirectories, but follows symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}

		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}

// SelectRandomImage selects a random image from a list of image paths.
func SelectRandomImage(imagePaths []string) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("image path list is empty")
	}

	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(imagePaths))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return imagePaths[idx.Int64()], nil
}

// ResolveImagePath resolves a path that could be a file or directory.
// If the path is a directory, it scans for images and returns a random one.
// Files and HTTP(S) URLs are returned as-is.
func ResolveImagePath(path string) (string, error) {
	if security.IsRemote(path) {
		return path, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return path, nil
	}

	imageFiles, err := ScanDirectoryForImages(path)
	if err != nil {
		return "", err
	}

	return SelectRandomImage(imageFiles)
}
