package distil

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// Downsample shrinks img so that it holds roughly maxPixels pixels while
// keeping its aspect ratio. Images already within the budget are returned as is.
//
// The pipeline never calls this; it is opt-in for callers that trade
// accuracy for speed on very large inputs.
func Downsample(img image.Image, maxPixels int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxPixels < 1 || w == 0 || h == 0 || w*h <= maxPixels {
		return img
	}

	ratio := float64(w) / float64(h)
	width := max(int(math.Sqrt(ratio*float64(maxPixels))), 1)
	height := max(int(float64(width)/ratio), 1)

	return transform.Resize(img, width, height, transform.Gaussian)
}
