package distil

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/distil/internal/quant"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DISTIL_"

// Config holds every tunable of the pipeline.
type Config struct {
	// PaletteSize is the number of colours the quantizer is asked for.
	PaletteSize int `toml:"palette_size"`

	// SampleStride controls how much of the sample the quantizer trains on.
	SampleStride int `toml:"sample_stride"`

	// MinBlack: pixels with every channel strictly below this are dropped.
	MinBlack uint8 `toml:"min_black"`

	// MaxWhite: pixels with every channel strictly above this are dropped.
	MaxWhite uint8 `toml:"max_white"`

	// UniquenessThreshold is the CIEDE2000 distance below which two colours merge.
	UniquenessThreshold float64 `toml:"uniqueness_threshold"`

	// MaxSampleCount caps the pixel count used by Downsample.
	MaxSampleCount int `toml:"max_sample_count"`

	// Algorithm selects the quantizer backend.
	Algorithm quant.Algorithm `toml:"algorithm"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		PaletteSize:         256,
		SampleStride:        10,
		MinBlack:            8,
		MaxWhite:            247,
		UniquenessThreshold: 10.0,
		MaxSampleCount:      1000,
		Algorithm:           quant.AlgorithmNeuQuant,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.PaletteSize < 1 {
		return fmt.Errorf("palette size must be at least 1, got %d", c.PaletteSize)
	}
	if c.PaletteSize > 256 {
		return fmt.Errorf("palette size too large: %d (maximum: 256)", c.PaletteSize)
	}
	if c.SampleStride < 1 {
		return fmt.Errorf("sample stride must be at least 1, got %d", c.SampleStride)
	}
	if c.MinBlack > c.MaxWhite {
		return fmt.Errorf("min black (%d) must not exceed max white (%d)", c.MinBlack, c.MaxWhite)
	}
	if c.UniquenessThreshold < 0 {
		return fmt.Errorf("uniqueness threshold must not be negative, got %g", c.UniquenessThreshold)
	}
	if c.MaxSampleCount < 1 {
		return fmt.Errorf("max sample count must be at least 1, got %d", c.MaxSampleCount)
	}
	if !quant.IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}
	return nil
}

// LoadConfigFile overlays the TOML file at path onto c.
// Keys missing from the file keep their current value.
func LoadConfigFile(c Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv overlays DISTIL_* environment variables onto c.
// Reads DISTIL_PALETTE_SIZE, DISTIL_SAMPLE_STRIDE, DISTIL_MIN_BLACK, DISTIL_MAX_WHITE,
// DISTIL_UNIQUENESS_THRESHOLD, DISTIL_MAX_SAMPLE_COUNT and DISTIL_ALGORITHM.
func ApplyEnv(c Config) (Config, error) {
	ints := []struct {
		key string
		dst *int
	}{
		{"PALETTE_SIZE", &c.PaletteSize},
		{"SAMPLE_STRIDE", &c.SampleStride},
		{"MAX_SAMPLE_COUNT", &c.MaxSampleCount},
	}
	for _, v := range ints {
		raw, ok := lookupEnv(v.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c, fmt.Errorf("invalid %s%s: %w", EnvPrefix, v.key, err)
		}
		*v.dst = n
	}

	channels := []struct {
		key string
		dst *uint8
	}{
		{"MIN_BLACK", &c.MinBlack},
		{"MAX_WHITE", &c.MaxWhite},
	}
	for _, v := range channels {
		raw, ok := lookupEnv(v.key)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return c, fmt.Errorf("invalid %s%s: %w", EnvPrefix, v.key, err)
		}
		*v.dst = uint8(n)
	}

	if raw, ok := lookupEnv("UNIQUENESS_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("invalid %sUNIQUENESS_THRESHOLD: %w", EnvPrefix, err)
		}
		c.UniquenessThreshold = f
	}

	if raw, ok := lookupEnv("ALGORITHM"); ok {
		c.Algorithm = quant.Algorithm(strings.ToLower(raw))
	}

	return c, nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
