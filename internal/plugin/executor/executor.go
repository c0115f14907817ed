// Package executor runs the distiller in an external plugin process,
// regardless of its underlying protocol (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/distil/internal/colour"
	"github.com/jmylchreest/distil/internal/distil"
	"github.com/jmylchreest/distil/internal/plugin/protocol"
	"github.com/jmylchreest/distil/pkg/plugin"
)

// JSONFlag is the argument that puts a JSON-stdio plugin in request mode.
const JSONFlag = "--json"

// infoTimeout bounds the --plugin-info query.
const infoTimeout = 5 * time.Second

// PluginExecutor distils images through an external plugin.
type PluginExecutor struct {
	path         string
	args         []string
	protocolType plugin.PluginType
	info         plugin.PluginInfo
	runner       ProcessRunner
	logger       hclog.Logger

	client *goplugin.Client
	remote plugin.Distiller
}

// New creates a PluginExecutor for the plugin at path, detecting its protocol.
// args are passed to the plugin before any protocol flag, so a multi-command
// binary can be used as "distil serve".
func New(ctx context.Context, path string, logger hclog.Logger, args ...string) (*PluginExecutor, error) {
	return NewWithRunner(ctx, path, NewRealProcessRunner(), logger, args...)
}

// NewWithRunner creates a PluginExecutor that starts processes with runner.
func NewWithRunner(ctx context.Context, path string, runner ProcessRunner, logger hclog.Logger, args ...string) (*PluginExecutor, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	infoCtx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	stdout, stderr, err := runner.Run(infoCtx, path, withFlag(args, protocol.InfoFlag), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin: %w%s", err, stderrSuffix(stderr))
	}

	result, err := protocol.ParseInfo(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}

	logger.Debug("detected plugin", "path", path, "name", result.PluginInfo.Name, "protocol", result.Type)

	return &PluginExecutor{
		path:         path,
		args:         args,
		protocolType: result.Type,
		info:         result.PluginInfo,
		runner:       runner,
		logger:       logger,
	}, nil
}

// Info returns the metadata the plugin reported.
func (e *PluginExecutor) Info() plugin.PluginInfo {
	return e.info
}

// Protocol returns the detected plugin protocol.
func (e *PluginExecutor) Protocol() plugin.PluginType {
	return e.protocolType
}

// Distil sends req to the plugin. Content errors come back as the same
// sentinel and typed errors the local pipeline returns.
func (e *PluginExecutor) Distil(ctx context.Context, req plugin.DistilRequest) (plugin.DistilResponse, error) {
	var resp plugin.DistilResponse
	var err error

	switch e.protocolType {
	case plugin.PluginTypeGoPlugin:
		resp, err = e.distilGoPlugin(ctx, req)
	case plugin.PluginTypeJSON:
		resp, err = e.distilJSON(ctx, req)
	default:
		return plugin.DistilResponse{}, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}

	if err != nil {
		e.logger.Error("plugin distillation failed", "plugin", e.info.Name, "error", err)
		return plugin.DistilResponse{}, e.toLocal(err, req.Source)
	}
	return resp, nil
}

// DistilResult is Distil returning the local result type.
func (e *PluginExecutor) DistilResult(ctx context.Context, req plugin.DistilRequest) (*distil.Result, error) {
	resp, err := e.Distil(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Counts) != len(resp.Colors) {
		return nil, fmt.Errorf("plugin returned %d colours but %d counts", len(resp.Colors), len(resp.Counts))
	}

	result := &distil.Result{
		Colors: make([]colour.RGB, len(resp.Colors)),
		Counts: make(map[int]int, len(resp.Colors)),
	}
	for i, c := range resp.Colors {
		result.Colors[i] = colour.RGB{R: c.R, G: c.G, B: c.B}
		result.Counts[i] = resp.Counts[i]
	}
	return result, nil
}

// Close cleans up any resources held by the executor.
func (e *PluginExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.remote = nil
	}
}

// --- Go-Plugin RPC implementation ---

func (e *PluginExecutor) getRPCClient() (plugin.Distiller, error) {
	if e.remote != nil {
		return e.remote, nil
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(nil),
		Cmd:              exec.Command(e.path, e.args...),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger.Named("plugin"),
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	remote, ok := raw.(plugin.Distiller)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	e.remote = remote
	return remote, nil
}

func (e *PluginExecutor) distilGoPlugin(ctx context.Context, req plugin.DistilRequest) (plugin.DistilResponse, error) {
	remote, err := e.getRPCClient()
	if err != nil {
		return plugin.DistilResponse{}, err
	}
	return remote.Distil(ctx, req)
}

// --- JSON-stdio implementation ---

func (e *PluginExecutor) distilJSON(ctx context.Context, req plugin.DistilRequest) (plugin.DistilResponse, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return plugin.DistilResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.path, withFlag(e.args, JSONFlag), bytes.NewReader(reqJSON))
	if err != nil {
		return plugin.DistilResponse{}, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}

	var resp plugin.DistilResponse
	if err := json.Unmarshal(stdout, &resp); err != nil {
		return plugin.DistilResponse{}, fmt.Errorf("failed to parse plugin output: %w\nOutput: %s", err, stdout)
	}
	return resp, resp.Err()
}

// toLocal maps a plugin error kind back onto the pipeline's own errors.
func (e *PluginExecutor) toLocal(err error, source string) error {
	var remote *plugin.RemoteError
	if !errors.As(err, &remote) {
		return err
	}

	switch remote.Kind {
	case plugin.ErrorKindUnsupportedFormat:
		return fmt.Errorf("plugin %s: %w", e.info.Name, distil.ErrUnsupportedFormat)
	case plugin.ErrorKindUninteresting:
		return fmt.Errorf("plugin %s: %w", e.info.Name, distil.ErrUninteresting)
	case plugin.ErrorKindDecode:
		return &distil.DecodeError{Source: source, Err: errors.New(remote.Message)}
	default:
		return err
	}
}

func withFlag(args []string, flag string) []string {
	out := make([]string, 0, len(args)+1)
	out = append(out, args...)
	return append(out, flag)
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	return "\nStderr: " + msg
}
