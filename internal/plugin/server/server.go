// Package server hosts the distiller behind the public plugin contract.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/distil/internal/distil"
	"github.com/jmylchreest/distil/internal/quant"
	"github.com/jmylchreest/distil/internal/version"
	"github.com/jmylchreest/distil/pkg/plugin"
)

// Server implements plugin.Distiller on top of the local pipeline.
type Server struct {
	cfg    distil.Config
	logger hclog.Logger
}

// New creates a Server. Requests are distilled with cfg unless they carry
// their own settings or name another algorithm.
func New(cfg distil.Config, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{cfg: cfg, logger: logger}
}

// GetMetadata returns plugin metadata for the go-plugin protocol.
func (s *Server) GetMetadata() plugin.PluginInfo {
	return s.Info(plugin.PluginTypeGoPlugin)
}

// Info returns plugin metadata advertising the given protocol.
func (s *Server) Info(proto plugin.PluginType) plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "distil",
		Version:         version.Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Perceptual palette distillation",
		PluginProtocol:  string(proto),
	}
}

// Distil runs the pipeline over req.Image.
func (s *Server) Distil(ctx context.Context, req plugin.DistilRequest) (plugin.DistilResponse, error) {
	cfg := s.cfg
	if req.Config != nil {
		cfg = applyConfig(cfg, req.Config)
	}
	if req.Algorithm != "" {
		cfg.Algorithm = quant.Algorithm(req.Algorithm)
	}

	d, err := distil.New(cfg, nil, s.logger)
	if err != nil {
		s.logger.Error("rejected request settings", "error", err)
		return plugin.DistilResponse{}, &plugin.RemoteError{Kind: plugin.ErrorKindInternal, Message: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return plugin.DistilResponse{}, err
	}

	result, err := d.DistilBytes(req.Image)
	if err != nil {
		return plugin.DistilResponse{}, Classify(err)
	}
	result = result.Truncate(req.PaletteSize)

	resp := plugin.DistilResponse{
		Colors: make([]plugin.RGBColour, result.Len()),
		Counts: make([]int, result.Len()),
	}
	for i, c := range result.Colors {
		resp.Colors[i] = plugin.RGBColour{R: c.R, G: c.G, B: c.B}
		resp.Counts[i] = result.Counts[i]
	}
	return resp, nil
}

// RequestConfig packs cfg for a DistilRequest.
func RequestConfig(cfg distil.Config) *plugin.DistilConfig {
	return &plugin.DistilConfig{
		PaletteSize:         cfg.PaletteSize,
		SampleStride:        cfg.SampleStride,
		MinBlack:            cfg.MinBlack,
		MaxWhite:            cfg.MaxWhite,
		UniquenessThreshold: cfg.UniquenessThreshold,
		MaxSampleCount:      cfg.MaxSampleCount,
	}
}

// applyConfig overlays rc onto cfg. The result is validated by distil.New.
func applyConfig(cfg distil.Config, rc *plugin.DistilConfig) distil.Config {
	cfg.PaletteSize = rc.PaletteSize
	cfg.SampleStride = rc.SampleStride
	cfg.MinBlack = rc.MinBlack
	cfg.MaxWhite = rc.MaxWhite
	cfg.UniquenessThreshold = rc.UniquenessThreshold
	cfg.MaxSampleCount = rc.MaxSampleCount
	return cfg
}

// Classify converts a pipeline error into a RemoteError of the matching kind.
func Classify(err error) *plugin.RemoteError {
	var decodeErr *distil.DecodeError
	kind := plugin.ErrorKindInternal
	switch {
	case errors.Is(err, distil.ErrUnsupportedFormat):
		kind = plugin.ErrorKindUnsupportedFormat
	case errors.Is(err, distil.ErrUninteresting):
		kind = plugin.ErrorKindUninteresting
	case errors.As(err, &decodeErr):
		kind = plugin.ErrorKindDecode
	}
	return &plugin.RemoteError{Kind: kind, Message: err.Error()}
}

// Serve blocks serving the go-plugin protocol on stdin/stdout.
func (s *Server) Serve() {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins:         plugin.PluginMap(s),
		Logger:          s.logger,
	})
}

// ServeJSON reads one DistilRequest from r and writes the DistilResponse to w.
// Content errors are reported inside the response; only I/O failures return an error.
func (s *Server) ServeJSON(ctx context.Context, r io.Reader, w io.Writer) error {
	var req plugin.DistilRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}

	resp, err := s.Distil(ctx, req)
	if err != nil {
		var remote *plugin.RemoteError
		if !errors.As(err, &remote) {
			remote = &plugin.RemoteError{Kind: plugin.ErrorKindInternal, Message: err.Error()}
		}
		resp = plugin.DistilResponse{ErrorKind: remote.Kind, Error: remote.Message}
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// WriteInfo writes the --plugin-info document for proto to w.
func (s *Server) WriteInfo(w io.Writer, proto plugin.PluginType) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Info(proto))
}
