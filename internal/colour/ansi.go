package colour

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

const defaultWidth = 8

// Swatcher renders colour previews for a particular output stream.
// The colour profile is detected from the writer, so previews degrade to
// plain text when the output is not a terminal.
type Swatcher struct {
	out *termenv.Output
}

// NewSwatcher creates a Swatcher for w.
func NewSwatcher(w io.Writer) *Swatcher {
	return &Swatcher{out: termenv.NewOutput(w)}
}

// NewTrueColourSwatcher creates a Swatcher that always emits 24-bit colour.
func NewTrueColourSwatcher(w io.Writer) *Swatcher {
	return &Swatcher{out: termenv.NewOutput(w, termenv.WithProfile(termenv.TrueColor))}
}

// Enabled reports whether the output supports any colour at all.
func (s *Swatcher) Enabled() bool {
	return s.out.ColorProfile() != termenv.Ascii
}

// Preview returns a solid block of width cells filled with c.
func (s *Swatcher) Preview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	block := strings.Repeat(" ", width)
	return s.out.String(block).Background(s.out.Color(c.Hex())).String()
}

// FormatWithPreview formats a colour with its preview and hex code.
func (s *Swatcher) FormatWithPreview(c RGB, width int) string {
	return fmt.Sprintf("%s %s", s.Preview(c, width), c.Hex())
}
