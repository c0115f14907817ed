package distil

import (
	"testing"

	"github.com/jmylchreest/distil/internal/colour"
)

func TestCountColors(t *testing.T) {
	red := colour.RGB{R: 255}
	green := colour.RGB{G: 255}
	blue := colour.RGB{B: 255}

	palette := []colour.RGB{blue, red, green, red, blue, red}
	got := CountColors(palette)

	want := []ColorCount{
		{Color: red, Count: 3},
		{Color: blue, Count: 2},
		{Color: green, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d counts, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCountColorsTieBreak(t *testing.T) {
	a := colour.RGB{R: 1, G: 2, B: 3}
	b := colour.RGB{R: 1, G: 2, B: 4}
	c := colour.RGB{R: 0, G: 200, B: 200}

	// Every colour appears once, so order falls back to RGB value.
	for _, palette := range [][]colour.RGB{{a, b, c}, {c, b, a}, {b, c, a}} {
		got := CountColors(palette)
		want := []colour.RGB{c, a, b}
		for i := range want {
			if got[i].Color != want[i] {
				t.Errorf("palette %v: position %d = %v, want %v", palette, i, got[i].Color, want[i])
			}
		}
	}
}

func TestCountColorsConservesTotal(t *testing.T) {
	palette := make([]colour.RGB, 256)
	for i := range palette {
		palette[i] = colour.RGB{R: uint8(i % 7), G: uint8(i % 3), B: 90}
	}

	total := 0
	for _, c := range CountColors(palette) {
		if c.Count < 1 {
			t.Errorf("count for %v is %d", c.Color, c.Count)
		}
		total += c.Count
	}
	if total != len(palette) {
		t.Errorf("total = %d, want %d", total, len(palette))
	}
}
