package plugin

import (
	"context"
)

// Distiller is the interface a distiller plugin must implement for go-plugin RPC.
type Distiller interface {
	// Distil reduces an encoded PNG or JPEG to its dominant colours.
	// Content errors are reported as *RemoteError so their kind survives RPC.
	Distil(ctx context.Context, req DistilRequest) (DistilResponse, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}
