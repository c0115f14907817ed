package distil

import (
	"math"
	"testing"

	"github.com/jmylchreest/distil/internal/colour"
)

func grey(l float64, count int) PerceptualColor {
	return PerceptualColor{Lab: colour.Lab{L: l}, Count: count}
}

func TestMergeCollapsesNearDuplicates(t *testing.T) {
	counts := []ColorCount{
		{Color: colour.RGB{R: 255}, Count: 250},
		{Color: colour.RGB{R: 250, G: 5, B: 5}, Count: 6},
	}

	merged := Merge(ToPerceptual(counts), DefaultConfig().UniquenessThreshold)
	if len(merged) != 1 {
		t.Fatalf("got %d clusters, want 1", len(merged))
	}
	if merged[0].Count != 256 {
		t.Errorf("count = %d, want 256", merged[0].Count)
	}
	if merged[0].Seed != (colour.RGB{R: 255}) {
		t.Errorf("seed = %v, want the more frequent colour", merged[0].Seed)
	}
}

func TestMergeKeepsDistinctColours(t *testing.T) {
	counts := []ColorCount{
		{Color: colour.RGB{R: 255}, Count: 100},
		{Color: colour.RGB{G: 255}, Count: 90},
		{Color: colour.RGB{B: 255}, Count: 66},
	}

	merged := Merge(ToPerceptual(counts), 10)
	if len(merged) != 3 {
		t.Fatalf("got %d clusters, want 3", len(merged))
	}
	for i, c := range counts {
		if merged[i].Seed != c.Color || merged[i].Count != c.Count {
			t.Errorf("cluster %d = %+v, want %+v", i, merged[i], c)
		}
	}
}

func TestAssignFirstMatchWins(t *testing.T) {
	// x is closer to the second cluster but within range of the first,
	// which was accepted earlier and so takes it.
	colors := []PerceptualColor{grey(50, 10), grey(65, 8), grey(60, 1)}

	accepted, similars := assign(colors, 12)
	if len(accepted) != 2 {
		t.Fatalf("accepted %d clusters, want 2", len(accepted))
	}
	if len(similars) != 1 {
		t.Fatalf("recorded %d similar colours, want 1", len(similars))
	}
	if similars[0].cluster != 0 {
		t.Errorf("similar assigned to cluster %d, want 0", similars[0].cluster)
	}
}

func TestAssignSeparation(t *testing.T) {
	var counts []ColorCount
	for i := range 64 {
		counts = append(counts, ColorCount{
			Color: colour.RGB{R: uint8(i * 4), G: uint8(255 - i*3), B: uint8(i * i % 256)},
			Count: 64 - i,
		})
	}

	threshold := DefaultConfig().UniquenessThreshold
	accepted, similars := assign(ToPerceptual(counts), threshold)

	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			if d := colour.DeltaE2000(accepted[i].Lab, accepted[j].Lab); d < threshold {
				t.Errorf("clusters %d and %d are %.2f apart, below %.1f", i, j, d, threshold)
			}
		}
	}
	if len(accepted)+len(similars) != len(counts) {
		t.Errorf("accepted %d + similar %d != %d inputs", len(accepted), len(similars), len(counts))
	}
}

func TestMergeSimilarIsSequential(t *testing.T) {
	accepted := []PerceptualColor{grey(50, 2)}
	similars := []similar{
		{cluster: 0, color: grey(52, 2)},
		{cluster: 0, color: grey(56, 4)},
	}

	mergeSimilar(accepted, similars)

	// (50*2 + 52*2) / 4 = 51, then (51*4 + 56*4) / 8 = 53.5.
	if got := accepted[0].Lab.L; math.Abs(got-53.5) > 1e-9 {
		t.Errorf("L = %v, want 53.5", got)
	}
	if accepted[0].Count != 8 {
		t.Errorf("count = %d, want 8", accepted[0].Count)
	}
}

func TestMergeResortsByCount(t *testing.T) {
	// The second seed gathers more merged weight than the first.
	colors := []PerceptualColor{
		{Lab: colour.Lab{L: 30}, Count: 5, Seed: colour.RGB{R: 1}},
		{Lab: colour.Lab{L: 80}, Count: 4, Seed: colour.RGB{R: 2}},
		{Lab: colour.Lab{L: 81}, Count: 3, Seed: colour.RGB{R: 3}},
		{Lab: colour.Lab{L: 80.5}, Count: 2, Seed: colour.RGB{R: 4}},
	}

	merged := Merge(colors, 10)
	if len(merged) != 2 {
		t.Fatalf("got %d clusters, want 2", len(merged))
	}
	if merged[0].Seed != (colour.RGB{R: 2}) || merged[0].Count != 9 {
		t.Errorf("first cluster = %+v, want seed R=2 with count 9", merged[0])
	}
	if merged[1].Count != 5 {
		t.Errorf("second cluster count = %d, want 5", merged[1].Count)
	}
}

func TestMergeTieBreakBySeed(t *testing.T) {
	colors := []PerceptualColor{
		{Lab: colour.ToLab(colour.RGB{B: 255}), Count: 5, Seed: colour.RGB{B: 255}},
		{Lab: colour.ToLab(colour.RGB{R: 255}), Count: 5, Seed: colour.RGB{R: 255}},
	}

	merged := Merge(colors, 10)
	if merged[0].Seed != (colour.RGB{B: 255}) {
		t.Errorf("first seed = %v, want blue (lower RGB value)", merged[0].Seed)
	}
}

func TestMergeConservesCount(t *testing.T) {
	var counts []ColorCount
	total := 0
	for i := range 40 {
		n := 1 + i%5
		counts = append(counts, ColorCount{Color: colour.RGB{R: uint8(200 + i), G: uint8(i), B: 40}, Count: n})
		total += n
	}

	sum := 0
	for _, c := range Merge(ToPerceptual(counts), 10) {
		sum += c.Count
	}
	if sum != total {
		t.Errorf("merged total = %d, want %d", sum, total)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, 10); len(got) != 0 {
		t.Errorf("Merge(nil) = %v", got)
	}
}
