// Package distil reduces an image to a short list of perceptually distinct
// dominant colours, ranked by how much of the image they cover.
//
// The pipeline filters out transparent, near-black and near-white pixels,
// quantizes the rest to a fixed-size palette, counts the palette entries,
// then greedily merges colours that are perceptually too close together.
package distil

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	imageutil "github.com/jmylchreest/distil/internal/image"
	"github.com/jmylchreest/distil/internal/quant"
)

// Distiller runs the palette distillation pipeline.
// It holds no state between calls and is safe for concurrent use when its
// quantizer is.
type Distiller struct {
	cfg       Config
	quantizer quant.Quantizer
	logger    hclog.Logger
}

// New creates a Distiller. A nil quantizer selects the backend named by
// cfg.Algorithm and a nil logger discards diagnostics.
func New(cfg Config, quantizer quant.Quantizer, logger hclog.Logger) (*Distiller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if quantizer == nil {
		q, err := quant.New(cfg.Algorithm)
		if err != nil {
			return nil, err
		}
		quantizer = q
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Distiller{cfg: cfg, quantizer: quantizer, logger: logger}, nil
}

// Config returns the configuration the Distiller was built with.
func (d *Distiller) Config() Config {
	return d.cfg
}

// DistilBytes decodes a PNG or JPEG and distils it.
func (d *Distiller) DistilBytes(data []byte) (*Result, error) {
	img, format, err := imageutil.Decode(data, "buffer")
	if err != nil {
		d.logger.Named("decode").Error("failed to decode image", "bytes", len(data), "error", err)
		return nil, err
	}
	d.logger.Debug("decoded image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return d.Distil(img)
}

// Distil runs the pipeline over img. The result is always fully populated;
// use Result.Truncate to keep only the most frequent colours.
func (d *Distiller) Distil(img image.Image) (*Result, error) {
	sample, err := FilterPixels(img, d.cfg)
	if err != nil {
		d.logger.Named("filter").Error("no pixels survived filtering", "error", err)
		return nil, err
	}
	d.logger.Debug("filtered pixels", "kept", len(sample)/quant.BytesPerPixel)

	palette, err := d.quantizer.Quantize(sample, d.cfg.PaletteSize, d.cfg.SampleStride)
	if err != nil {
		d.logger.Named("quantize").Error("quantization failed", "error", err)
		return nil, fmt.Errorf("quantization failed: %w", err)
	}

	counts := CountColors(palette)
	clusters := Merge(ToPerceptual(counts), d.cfg.UniquenessThreshold)
	d.logger.Debug("merged palette",
		"quantized", len(palette),
		"distinct", len(counts),
		"clusters", len(clusters))

	return NewResult(clusters), nil
}
