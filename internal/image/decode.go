package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/image/draw"
)

// Format identifies a supported encoded image format.
type Format string

const (
	// FormatPNG is the PNG format.
	FormatPNG Format = "png"

	// FormatJPEG is the JPEG format.
	FormatJPEG Format = "jpeg"
)

// sniffLen is how many leading bytes are inspected to detect the format.
const sniffLen = 262

// ErrUnsupportedFormat is returned when the image bytes are neither PNG nor JPEG.
var ErrUnsupportedFormat = errors.New("the image isn't a JPEG or a PNG")

// DecodeError is returned when the bytes claim a supported format but cannot be decoded.
type DecodeError struct {
	// Source names where the bytes came from (a path, URL, or "buffer").
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Sniff detects the format of data from its leading magic bytes.
// Anything other than PNG or JPEG yields ErrUnsupportedFormat.
func Sniff(data []byte) (Format, error) {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	kind, err := filetype.Match(head)
	if err != nil {
		return "", ErrUnsupportedFormat
	}

	switch kind.MIME.Value {
	case matchers.TypePng.MIME.Value:
		return FormatPNG, nil
	case matchers.TypeJpeg.MIME.Value:
		return FormatJPEG, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Decode sniffs and decodes data into a non-premultiplied RGBA pixel grid.
// The format check happens before any decoding is attempted.
func Decode(data []byte, source string) (*image.NRGBA, Format, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}

	var img image.Image
	switch format {
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, format, &DecodeError{Source: source, Err: err}
	}

	return ToNRGBA(img), format, nil
}

// ToNRGBA returns img as an *image.NRGBA whose bounds start at the origin.
// Images that already match are returned without copying.
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
