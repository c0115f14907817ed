package cli

import (
	"strings"
)

// Table lays out rows in aligned columns separated by two spaces.
// Cells are measured in bytes, so only the last column may hold escape sequences.
type Table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, right: make(map[int]bool)}
}

// AlignRight right-aligns the given columns.
func (t *Table) AlignRight(cols ...int) {
	for _, c := range cols {
		t.right[c] = true
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		last := len(cells) - 1
		for i, cell := range cells {
			pad := strings.Repeat(" ", widths[i]-len(cell))
			switch {
			case t.right[i]:
				sb.WriteString(pad + cell)
			case i == last:
				sb.WriteString(cell)
			default:
				sb.WriteString(cell + pad)
			}
			if i < last {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.headers)
	for _, row := range t.rows {
		writeRow(row)
	}
	return sb.String()
}
