package plugin

import "fmt"

// PluginInfo contains metadata about a plugin, as printed by --plugin-info.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}

// DistilRequest asks a plugin to distil one image.
type DistilRequest struct {
	// Image holds the encoded PNG or JPEG bytes.
	Image []byte `json:"image"`

	// Source names the image in error messages.
	Source string `json:"source,omitempty"`

	// PaletteSize truncates the result. Zero keeps every colour.
	PaletteSize int `json:"palette_size,omitempty"`

	// Algorithm overrides the plugin's quantizer when set.
	Algorithm string `json:"algorithm,omitempty"`

	// Config replaces the plugin's pipeline settings when set.
	Config *DistilConfig `json:"config,omitempty"`
}

// DistilConfig carries the host's pipeline settings so a plugin distils with
// the same layered configuration the host would use locally. Every field
// applies, so a zero threshold disables merging.
type DistilConfig struct {
	PaletteSize         int     `json:"palette_size"`
	SampleStride        int     `json:"sample_stride"`
	MinBlack            uint8   `json:"min_black"`
	MaxWhite            uint8   `json:"max_white"`
	UniquenessThreshold float64 `json:"uniqueness_threshold"`
	MaxSampleCount      int     `json:"max_sample_count"`
}

// DistilResponse is the distilled palette, most frequent colour first.
// Counts[i] is the merged count of Colors[i].
type DistilResponse struct {
	Colors    []RGBColour `json:"colors"`
	Counts    []int       `json:"counts"`
	ErrorKind ErrorKind   `json:"error_kind,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// RGBColour represents an RGB color.
type RGBColour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ErrorKind classifies a failed distillation.
type ErrorKind string

const (
	ErrorKindUnsupportedFormat ErrorKind = "unsupported_format"
	ErrorKindDecode            ErrorKind = "decode"
	ErrorKindUninteresting     ErrorKind = "uninteresting"
	ErrorKindInternal          ErrorKind = "internal"
)

// RemoteError is a distillation failure reported by a plugin.
type RemoteError struct {
	Kind    ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("plugin error (%s): %s", e.Kind, e.Message)
}

// Err returns the error carried by resp, or nil when it succeeded.
func (resp DistilResponse) Err() error {
	if resp.ErrorKind == "" {
		return nil
	}
	return &RemoteError{Kind: resp.ErrorKind, Message: resp.Error}
}
