package distil

import (
	"image"
	"image/color"

	"github.com/jmylchreest/distil/internal/quant"
)

// FilterPixels returns the RGBA bytes of every interesting pixel of img in
// row-major order. A pixel is interesting when it is fully opaque and neither
// near-black nor near-white. ErrUninteresting is returned when none survive.
func FilterPixels(img image.Image, cfg Config) ([]byte, error) {
	bounds := img.Bounds()
	sample := make([]byte, 0, bounds.Dx()*bounds.Dy()*quant.BytesPerPixel)

	keep := func(r, g, b, a uint8) {
		if a != 255 || isNearBlack(r, g, b, cfg.MinBlack) || isNearWhite(r, g, b, cfg.MaxWhite) {
			return
		}
		sample = append(sample, r, g, b, a)
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, y):nrgba.PixOffset(bounds.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				keep(row[i], row[i+1], row[i+2], row[i+3])
			}
		}
	} else {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				keep(c.R, c.G, c.B, c.A)
			}
		}
	}

	if len(sample) == 0 {
		return nil, ErrUninteresting
	}
	return sample, nil
}

func isNearBlack(r, g, b, limit uint8) bool {
	return r < limit && g < limit && b < limit
}

func isNearWhite(r, g, b, limit uint8) bool {
	return r > limit && g > limit && b > limit
}
