package quant

import (
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/jmylchreest/distil/internal/colour"
)

// MedianCut implements median cut quantization.
type MedianCut struct {
	q quantize.MedianCutQuantizer
}

// NewMedianCut creates a new MedianCut quantizer.
func NewMedianCut() *MedianCut {
	return &MedianCut{q: quantize.MedianCutQuantizer{AddTransparent: false}}
}

// Quantize returns at most paletteSize colours. Fewer are returned when the
// sample cannot be split any further.
func (m *MedianCut) Quantize(sample []byte, paletteSize, sampleStride int) ([]colour.RGB, error) {
	if err := validate(sample, paletteSize, sampleStride); err != nil {
		return nil, err
	}

	img := sampleImage(sample, sampleStride)
	palette := m.q.Quantize(make(color.Palette, 0, paletteSize), img)

	out := make([]colour.RGB, len(palette))
	for i, c := range palette {
		out[i] = colour.ToRGB(c)
	}
	return out, nil
}
