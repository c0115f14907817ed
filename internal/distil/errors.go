package distil

import (
	"errors"

	"github.com/jmylchreest/distil/internal/image"
)

// ErrUninteresting is returned when no pixel survives filtering: the image is
// entirely transparent, near-black or near-white.
var ErrUninteresting = errors.New("the image doesn't have any interesting colors")

// ErrUnsupportedFormat is returned when the input is neither a PNG nor a JPEG.
var ErrUnsupportedFormat = image.ErrUnsupportedFormat

// DecodeError reports input that sniffed as a supported format but failed to decode.
type DecodeError = image.DecodeError
