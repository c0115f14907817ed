package quant

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/jmylchreest/distil/internal/colour"
)

// KMeans implements quantization with k-means clustering.
type KMeans struct {
	km kmeans.Kmeans
}

// NewKMeans creates a new KMeans quantizer with default settings.
func NewKMeans() *KMeans {
	return &KMeans{km: kmeans.New()}
}

// Quantize returns one centroid per non-empty cluster, at most paletteSize.
func (k *KMeans) Quantize(sample []byte, paletteSize, sampleStride int) ([]colour.RGB, error) {
	if err := validate(sample, paletteSize, sampleStride); err != nil {
		return nil, err
	}

	pixels := len(sample) / BytesPerPixel
	dataset := make(clusters.Observations, 0, pixels/sampleStride+1)
	for i := 0; i < pixels; i += sampleStride {
		px := sample[i*BytesPerPixel:]
		dataset = append(dataset, clusters.Coordinates{
			float64(px[0]),
			float64(px[1]),
			float64(px[2]),
		})
	}

	// Partition refuses to build more clusters than there are observations.
	n := min(paletteSize, len(dataset))
	cc, err := k.km.Partition(dataset, n)
	if err != nil {
		return nil, fmt.Errorf("k-means partition failed: %w", err)
	}

	out := make([]colour.RGB, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		out = append(out, colour.RGB{
			R: clampChannel(c.Center[0]),
			G: clampChannel(c.Center[1]),
			B: clampChannel(c.Center[2]),
		})
	}
	return out, nil
}
