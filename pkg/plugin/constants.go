// Package plugin provides the public API for running the distiller out of process.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// MinCompatibleVersion is the oldest protocol version this host can work with.
	MinCompatibleVersion = "0.1.0"

	// PluginName is the key the distiller is dispensed under.
	PluginName = "distiller"
)

// Handshake is the handshake configuration for go-plugin protocol.
// go-plugin only compares the major version; the full version is checked
// against --plugin-info before the plugin is launched.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0,
	MagicCookieKey:   "DISTIL_PLUGIN",
	MagicCookieValue: "distil_palette",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the plugin reads one request as JSON on stdin
	// and writes one response as JSON to stdout.
	PluginTypeJSON PluginType = "json-stdio"
)

// PluginMap returns the plugin set served and dispensed by both sides.
func PluginMap(impl Distiller) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &DistillerRPC{Impl: impl},
	}
}
