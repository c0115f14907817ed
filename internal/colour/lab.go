package colour

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Lab is a point in CIE L*a*b* space (D65 white point).
//
// Coordinates use the conventional reference scale: L in [0, 100] and a, b
// roughly in [-128, 127]. DeltaE2000 distances are reported on the same scale,
// so a difference of ~1 is the threshold of perception.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// go-colorful stores Lab with L in [0, 1]; this converts between the two scales.
const labScale = 100.0

// ToLab converts an sRGB colour to Lab.
func ToLab(rgb RGB) Lab {
	c := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	l, a, b := c.Lab()
	return Lab{L: l * labScale, A: a * labScale, B: b * labScale}
}

// RGB converts a Lab point back to sRGB, clamping out-of-gamut values.
func (lab Lab) RGB() RGB {
	r, g, b := lab.colorful().Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

func (lab Lab) colorful() colorful.Color {
	return colorful.Lab(lab.L/labScale, lab.A/labScale, lab.B/labScale)
}

// DeltaE2000 returns the CIEDE2000 colour difference between two Lab points.
func DeltaE2000(x, y Lab) float64 {
	return x.colorful().DistanceCIEDE2000(y.colorful()) * labScale
}
