// Package quant reduces a population of pixels to a small representative palette.
package quant

import (
	"fmt"
	"image"
	"math"

	"github.com/jmylchreest/distil/internal/colour"
)

// BytesPerPixel is the layout of every sample: R, G, B, A.
const BytesPerPixel = 4

// Quantizer reduces a pixel sample to at most paletteSize representative colours.
type Quantizer interface {
	// Quantize trains on sample (BytesPerPixel bytes per pixel) and returns the palette.
	// sampleStride trades accuracy for speed: only every sampleStride-th pixel
	// is guaranteed to be visited during training.
	Quantize(sample []byte, paletteSize, sampleStride int) ([]colour.RGB, error)
}

// Algorithm represents the quantization algorithm type.
type Algorithm string

const (
	// AlgorithmNeuQuant uses a Kohonen self-organising network. It always
	// returns exactly paletteSize colours and is fully deterministic.
	AlgorithmNeuQuant Algorithm = "neuquant"

	// AlgorithmMedianCut recursively splits the colour cube at the median.
	AlgorithmMedianCut Algorithm = "mediancut"

	// AlgorithmKMeans uses k-means clustering. Seeding is random, so results vary between runs.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmDominant picks the most dominant colours of a downscaled copy.
	AlgorithmDominant Algorithm = "dominant"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmNeuQuant,
		AlgorithmMedianCut,
		AlgorithmKMeans,
		AlgorithmDominant,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// New creates a new Quantizer based on the specified algorithm.
func New(alg Algorithm) (Quantizer, error) {
	switch alg {
	case AlgorithmNeuQuant:
		return NewNeuQuant(), nil
	case AlgorithmMedianCut:
		return NewMedianCut(), nil
	case AlgorithmKMeans:
		return NewKMeans(), nil
	case AlgorithmDominant:
		return NewDominant(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

func validate(sample []byte, paletteSize, sampleStride int) error {
	if len(sample) == 0 {
		return fmt.Errorf("sample cannot be empty")
	}
	if len(sample)%BytesPerPixel != 0 {
		return fmt.Errorf("sample length %d is not a multiple of %d", len(sample), BytesPerPixel)
	}
	if paletteSize < 1 {
		return fmt.Errorf("palette size must be at least 1, got %d", paletteSize)
	}
	if sampleStride < 1 {
		return fmt.Errorf("sample stride must be at least 1, got %d", sampleStride)
	}
	return nil
}

// sampleImage lays the strided sample out as a near-square image for
// quantizers that operate on image.Image. The final row is padded by
// cycling from the start of the sample so no synthetic colours are introduced.
func sampleImage(sample []byte, stride int) *image.NRGBA {
	pixels := len(sample) / BytesPerPixel
	n := (pixels + stride - 1) / stride

	width := int(math.Ceil(math.Sqrt(float64(n))))
	height := (n + width - 1) / width

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range width * height {
		src := ((i % n) * stride) * BytesPerPixel
		copy(img.Pix[i*BytesPerPixel:(i+1)*BytesPerPixel], sample[src:src+BytesPerPixel])
	}
	return img
}
