package compression

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

func xzBytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz.NewWriter() error = %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("xz write error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close error = %v", err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("gzip write error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close error = %v", err)
	}
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	payload := []byte("\x89PNG\r\n\x1a\n")

	tests := []struct {
		name     string
		data     []byte
		filename string
		want     Codec
	}{
		{name: "xz magic", data: xzBytes(t, payload), filename: "img.png", want: CodecXz},
		{name: "gzip magic", data: gzipBytes(t, payload), filename: "img", want: CodecGzip},
		{name: "bzip2 magic", data: []byte("BZh91AY&SY"), filename: "img", want: CodecBzip2},
		{name: "plain png", data: payload, filename: "img.png.xz", want: CodecNone},
		{name: "empty uses extension", data: nil, filename: "img.png.gz", want: CodecGzip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data, tt.filename); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrimExtension(t *testing.T) {
	tests := map[string]string{
		"wall.png.xz":  "wall.png",
		"wall.JPG.GZ":  "wall.JPG",
		"wall.png.bz2": "wall.png",
		"wall.png":     "wall.png",
	}
	for in, want := range tests {
		if got := TrimExtension(in); got != want {
			t.Errorf("TrimExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecompress(t *testing.T) {
	payload := []byte(strings.Repeat("distil", 100))

	t.Run("xz", func(t *testing.T) {
		got, err := Decompress(xzBytes(t, payload), "a.png.xz", 1<<20)
		if err != nil {
			t.Fatalf("Decompress() error = %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Error("xz payload mismatch")
		}
	})

	t.Run("gzip", func(t *testing.T) {
		got, err := Decompress(gzipBytes(t, payload), "a.png.gz", 1<<20)
		if err != nil {
			t.Fatalf("Decompress() error = %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Error("gzip payload mismatch")
		}
	})

	t.Run("uncompressed passthrough", func(t *testing.T) {
		got, err := Decompress(payload, "a.png", 10)
		if err != nil {
			t.Fatalf("Decompress() error = %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Error("passthrough should return input unchanged")
		}
	})

	t.Run("limit exceeded", func(t *testing.T) {
		if _, err := Decompress(xzBytes(t, payload), "a.xz", 10); err == nil {
			t.Error("expected size limit error")
		}
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		if _, err := Decompress([]byte{0x1f, 0x8b, 0x00}, "a.gz", 1<<20); err == nil {
			t.Error("expected error for corrupt gzip")
		}
	})
}
