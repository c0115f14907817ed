package distil

import (
	"encoding/json"
	"testing"

	"github.com/jmylchreest/distil/internal/colour"
)

func sampleResult() *Result {
	return &Result{
		Colors: []colour.RGB{{R: 255}, {G: 255}, {B: 255}},
		Counts: map[int]int{0: 200, 1: 40, 2: 16},
	}
}

func TestNewResult(t *testing.T) {
	clusters := []PerceptualColor{
		{Lab: colour.ToLab(colour.RGB{R: 200, G: 30, B: 30}), Count: 10},
		{Lab: colour.ToLab(colour.RGB{R: 30, G: 30, B: 200}), Count: 3},
	}

	r := NewResult(clusters)
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if r.Colors[0] != (colour.RGB{R: 200, G: 30, B: 30}) {
		t.Errorf("Colors[0] = %v, Lab round trip drifted", r.Colors[0])
	}
	if r.Counts[0] != 10 || r.Counts[1] != 3 {
		t.Errorf("Counts = %v", r.Counts)
	}
}

func TestResultTruncate(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "fewer", n: 2, want: 2},
		{name: "exact", n: 3, want: 3},
		{name: "more than available", n: 10, want: 3},
		{name: "zero keeps all", n: 0, want: 3},
		{name: "negative keeps all", n: -1, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleResult()
			got := r.Truncate(tt.n)
			if got.Len() != tt.want {
				t.Fatalf("Len() = %d, want %d", got.Len(), tt.want)
			}
			if len(got.Counts) != tt.want {
				t.Errorf("len(Counts) = %d, want %d", len(got.Counts), tt.want)
			}
			for i := range tt.want {
				if got.Colors[i] != r.Colors[i] || got.Counts[i] != r.Counts[i] {
					t.Errorf("entry %d changed by truncation", i)
				}
			}
		})
	}
}

func TestResultTruncateCopies(t *testing.T) {
	r := sampleResult()
	got := r.Truncate(1)
	got.Colors[0] = colour.RGB{R: 1}
	got.Counts[0] = 1

	if r.Colors[0] != (colour.RGB{R: 255}) || r.Counts[0] != 200 {
		t.Error("Truncate() shares storage with the original")
	}
}

func TestResultTotal(t *testing.T) {
	if got := sampleResult().Total(); got != 256 {
		t.Errorf("Total() = %d, want 256", got)
	}
}

func TestResultToJSON(t *testing.T) {
	data, err := sampleResult().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded struct {
		Colors []struct {
			Hex   string `json:"hex"`
			Count int    `json:"count"`
		} `json:"colors"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Colors) != 3 || decoded.Total != 256 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Colors[0].Hex != "#ff0000" || decoded.Colors[0].Count != 200 {
		t.Errorf("first colour = %+v", decoded.Colors[0])
	}
}

func TestResultString(t *testing.T) {
	want := "#ff0000(200) #00ff00(40) #0000ff(16)"
	if got := sampleResult().String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
