package distil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmylchreest/distil/internal/colour"
)

// Result is the distilled palette, most frequent colour first.
type Result struct {
	// Colors holds one colour per merged cluster.
	Colors []colour.RGB `json:"colors"`

	// Counts maps the rank of each colour in Colors to its merged count.
	Counts map[int]int `json:"counts"`
}

// NewResult converts merged clusters back to RGB, keeping their order.
func NewResult(clusters []PerceptualColor) *Result {
	r := &Result{
		Colors: make([]colour.RGB, len(clusters)),
		Counts: make(map[int]int, len(clusters)),
	}
	for i, c := range clusters {
		r.Colors[i] = c.Lab.RGB()
		r.Counts[i] = c.Count
	}
	return r
}

// Len returns the number of colours in the result.
func (r *Result) Len() int {
	return len(r.Colors)
}

// Truncate returns a copy holding at most the n most frequent colours.
// n <= 0 or n larger than the result keeps every colour; nothing is padded.
func (r *Result) Truncate(n int) *Result {
	if n <= 0 || n > len(r.Colors) {
		n = len(r.Colors)
	}
	out := &Result{
		Colors: make([]colour.RGB, n),
		Counts: make(map[int]int, n),
	}
	copy(out.Colors, r.Colors[:n])
	for i := range n {
		out.Counts[i] = r.Counts[i]
	}
	return out
}

// Total returns the sum of all counts.
func (r *Result) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// ToJSON renders the result as indented JSON with hex colours.
func (r *Result) ToJSON() ([]byte, error) {
	type entry struct {
		Hex   string `json:"hex"`
		R     uint8  `json:"r"`
		G     uint8  `json:"g"`
		B     uint8  `json:"b"`
		Count int    `json:"count"`
	}

	entries := make([]entry, len(r.Colors))
	for i, c := range r.Colors {
		entries[i] = entry{Hex: c.Hex(), R: c.R, G: c.G, B: c.B, Count: r.Counts[i]}
	}
	return json.MarshalIndent(struct {
		Colors []entry `json:"colors"`
		Total  int     `json:"total"`
	}{entries, r.Total()}, "", "  ")
}

// String returns a compact representation such as "#ff0000(200) #00ff00(56)".
func (r *Result) String() string {
	parts := make([]string, len(r.Colors))
	for i, c := range r.Colors {
		parts[i] = fmt.Sprintf("%s(%d)", c.Hex(), r.Counts[i])
	}
	return strings.Join(parts, " ")
}
