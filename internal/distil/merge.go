package distil

import (
	"cmp"
	"slices"

	"github.com/jmylchreest/distil/internal/colour"
)

// PerceptualColor is a colour in CIE Lab and the number of palette entries it
// stands for. Seed is the quantized colour it started from and provides a
// stable ordering between clusters of equal count.
type PerceptualColor struct {
	Lab   colour.Lab
	Count int
	Seed  colour.RGB
}

// ToPerceptual converts counted colours to Lab, preserving order.
func ToPerceptual(counts []ColorCount) []PerceptualColor {
	out := make([]PerceptualColor, len(counts))
	for i, c := range counts {
		out[i] = PerceptualColor{Lab: colour.ToLab(c.Color), Count: c.Count, Seed: c.Color}
	}
	return out
}

// similar records a colour that fell within the threshold of an accepted cluster.
type similar struct {
	cluster int
	color   PerceptualColor
}

// Merge folds near-duplicate colours into clusters and returns the clusters
// ordered by descending count.
//
// colors must already be ordered most frequent first. Each colour joins the
// first accepted cluster closer than threshold, otherwise it is accepted as a
// new cluster. Merged centroids are not re-checked against other clusters.
func Merge(colors []PerceptualColor, threshold float64) []PerceptualColor {
	accepted, similars := assign(colors, threshold)
	mergeSimilar(accepted, similars)

	slices.SortStableFunc(accepted, func(a, b PerceptualColor) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return a.Seed.Compare(b.Seed)
	})
	return accepted
}

func assign(colors []PerceptualColor, threshold float64) ([]PerceptualColor, []similar) {
	var accepted []PerceptualColor
	var similars []similar

	for _, x := range colors {
		match := -1
		for i, c := range accepted {
			if colour.DeltaE2000(x.Lab, c.Lab) < threshold {
				match = i
				break
			}
		}
		if match >= 0 {
			similars = append(similars, similar{cluster: match, color: x})
			continue
		}
		accepted = append(accepted, x)
	}
	return accepted, similars
}

// mergeSimilar applies each recorded merge in order, so later merges into a
// cluster see the centroid and count left by earlier ones.
func mergeSimilar(accepted []PerceptualColor, similars []similar) {
	for _, s := range similars {
		c := &accepted[s.cluster]
		total := float64(c.Count + s.color.Count)
		wc := float64(c.Count)
		wx := float64(s.color.Count)

		c.Lab = colour.Lab{
			L: (c.Lab.L*wc + s.color.Lab.L*wx) / total,
			A: (c.Lab.A*wc + s.color.Lab.A*wx) / total,
			B: (c.Lab.B*wc + s.color.Lab.B*wx) / total,
		}
		c.Count += s.color.Count
	}
}
