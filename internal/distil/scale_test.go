package distil

import (
	"image"
	"testing"
)

func TestDownsample(t *testing.T) {
	tests := []struct {
		name          string
		w, h          int
		maxPixels     int
		wantW, wantH  int
		wantUnchanged bool
	}{
		{name: "landscape", w: 2000, h: 1000, maxPixels: 1000, wantW: 44, wantH: 22},
		{name: "square", w: 500, h: 500, maxPixels: 1000, wantW: 31, wantH: 31},
		{name: "portrait", w: 100, h: 400, maxPixels: 1000, wantW: 15, wantH: 60},
		{name: "within budget", w: 20, h: 20, maxPixels: 1000, wantUnchanged: true},
		{name: "no budget", w: 2000, h: 2000, maxPixels: 0, wantUnchanged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := Downsample(img, tt.maxPixels)

			if tt.wantUnchanged {
				if got != image.Image(img) {
					t.Error("Downsample() copied an image that was within budget")
				}
				return
			}
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}
