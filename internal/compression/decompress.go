// Package compression provides transparent decompression of single-file image payloads.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/distil/internal/security"
)

// Codec identifies a compression format.
type Codec string

const (
	// CodecNone means the payload is not compressed.
	CodecNone Codec = ""
	// CodecGzip is gzip (.gz).
	CodecGzip Codec = "gzip"
	// CodecXz is xz (.xz).
	CodecXz Codec = "xz"
	// CodecBzip2 is bzip2 (.bz2).
	CodecBzip2 Codec = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte("BZh")
)

var extensions = map[string]Codec{
	".gz":  CodecGzip,
	".xz":  CodecXz,
	".bz2": CodecBzip2,
}

// Detect determines the codec of data. Magic bytes win over the name's extension,
// so a mislabelled file is still handled correctly.
func Detect(data []byte, name string) Codec {
	switch {
	case bytes.HasPrefix(data, xzMagic):
		return CodecXz
	case bytes.HasPrefix(data, gzipMagic):
		return CodecGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return CodecBzip2
	}
	if len(data) == 0 {
		return extensions[strings.ToLower(filepath.Ext(name))]
	}
	return CodecNone
}

// IsCompressed reports whether name carries a recognised compression extension.
func IsCompressed(name string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// TrimExtension strips a trailing compression extension, e.g. "a.png.xz" -> "a.png".
func TrimExtension(name string) string {
	if IsCompressed(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// Decompress inflates data if it is compressed and returns it unchanged otherwise.
// At most limit bytes of output are produced; larger payloads fail.
func Decompress(data []byte, name string, limit int64) ([]byte, error) {
	codec := Detect(data, name)
	if codec == CodecNone {
		return data, nil
	}

	var r io.Reader
	switch codec {
	case CodecGzip:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case CodecXz:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case CodecBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s payload: %w", codec, err)
	}

	return out, nil
}
