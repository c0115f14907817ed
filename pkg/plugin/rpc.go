package plugin

import (
	"context"
	"errors"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// DistillerRPC implements the go-plugin Plugin interface for distiller plugins.
type DistillerRPC struct {
	plugin.Plugin
	Impl Distiller
}

// Server returns an RPC server for this plugin.
func (p *DistillerRPC) Server(*plugin.MuxBroker) (any, error) {
	return &DistillerRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *DistillerRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &DistillerRPCClient{client: c}, nil
}

// DistillerRPCServer is the RPC server implementation for distiller plugins.
type DistillerRPCServer struct {
	Impl Distiller
}

// Distil implements the RPC method for palette distillation.
// A *RemoteError is folded into the response so the host can tell content
// errors apart from transport failures.
func (s *DistillerRPCServer) Distil(req DistilRequest, resp *DistilResponse) error {
	out, err := s.Impl.Distil(context.Background(), req)
	if err != nil {
		var remote *RemoteError
		if !errors.As(err, &remote) {
			return err
		}
		out = DistilResponse{ErrorKind: remote.Kind, Error: remote.Message}
	}
	*resp = out
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *DistillerRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// DistillerRPCClient is the RPC client implementation for distiller plugins.
type DistillerRPCClient struct {
	client *rpc.Client
}

// Distil calls the remote Distil method.
func (c *DistillerRPCClient) Distil(_ context.Context, req DistilRequest) (DistilResponse, error) {
	var resp DistilResponse
	if err := c.client.Call("Plugin.Distil", req, &resp); err != nil {
		return DistilResponse{}, err
	}
	return resp, resp.Err()
}

// GetMetadata calls the remote GetMetadata method.
func (c *DistillerRPCClient) GetMetadata() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}
