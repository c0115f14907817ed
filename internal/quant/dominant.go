package quant

import (
	"github.com/cenkalti/dominantcolor"

	"github.com/jmylchreest/distil/internal/colour"
)

// Dominant picks the most dominant colours using cenkalti/dominantcolor.
type Dominant struct{}

// NewDominant creates a new Dominant quantizer.
func NewDominant() *Dominant {
	return &Dominant{}
}

// Quantize returns up to paletteSize dominant colours, most dominant first.
func (d *Dominant) Quantize(sample []byte, paletteSize, sampleStride int) ([]colour.RGB, error) {
	if err := validate(sample, paletteSize, sampleStride); err != nil {
		return nil, err
	}

	found := dominantcolor.FindWeight(sampleImage(sample, sampleStride), paletteSize)

	out := make([]colour.RGB, len(found))
	for i, c := range found {
		out[i] = colour.RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B}
	}
	return out, nil
}
