package distil

import (
	"cmp"
	"slices"

	"github.com/jmylchreest/distil/internal/colour"
)

// ColorCount is a quantized colour and the number of palette entries that produced it.
type ColorCount struct {
	Color colour.RGB
	Count int
}

// CountColors tallies identical colours and orders them by descending count.
// Equal counts are ordered by RGB value so the result is reproducible.
func CountColors(palette []colour.RGB) []ColorCount {
	tally := make(map[colour.RGB]int, len(palette))
	for _, c := range palette {
		tally[c]++
	}

	counts := make([]ColorCount, 0, len(tally))
	for c, n := range tally {
		counts = append(counts, ColorCount{Color: c, Count: n})
	}

	slices.SortFunc(counts, func(a, b ColorCount) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return a.Color.Compare(b.Color)
	})
	return counts
}
