package imagecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestKey(t *testing.T) {
	a := Key("https://example.com/wall.png?size=large")
	if !strings.HasSuffix(a, ".png") {
		t.Errorf("Key() = %q, want .png suffix", a)
	}
	if a != Key("https://example.com/wall.png?size=large") {
		t.Error("Key() should be deterministic")
	}
	if a == Key("https://example.com/other.png") {
		t.Error("different URLs should have different keys")
	}
	if got := Key("https://example.com/image"); !strings.HasSuffix(got, ".img") {
		t.Errorf("Key() = %q, want .img fallback", got)
	}
}

func TestFetchCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	opts := CacheOptions{CacheDir: t.TempDir()}
	url := srv.URL + "/wall.png"

	for i := range 3 {
		data, path, err := Fetch(context.Background(), url, opts)
		if err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
		if string(data) != "image-bytes" {
			t.Errorf("Fetch() #%d = %q", i, data)
		}
		if !strings.HasSuffix(path, ".png") {
			t.Errorf("cached path %q should keep extension", path)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}

	opts.Refresh = true
	if _, _, err := Fetch(context.Background(), url, opts); err != nil {
		t.Fatalf("Fetch() with refresh error = %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times after refresh, want 2", got)
	}
}

func TestFetchRejectsLocalPath(t *testing.T) {
	if _, _, err := Fetch(context.Background(), "/tmp/wall.png", CacheOptions{CacheDir: t.TempDir()}); err == nil {
		t.Error("expected error for non-URL")
	}
}
