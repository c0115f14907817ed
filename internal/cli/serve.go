package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/distil/internal/distil"
	"github.com/jmylchreest/distil/internal/plugin/executor"
	"github.com/jmylchreest/distil/internal/plugin/protocol"
	"github.com/jmylchreest/distil/internal/plugin/server"
	"github.com/jmylchreest/distil/pkg/plugin"
)

func newServeCmd() *cobra.Command {
	var (
		jsonMode   bool
		pluginInfo bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as a distiller plugin",
		Long: `Run distil as a plugin for another host process.

By default the go-plugin RPC protocol is served on stdin/stdout and the
command only returns when the host disconnects. With --json a single request
is read from stdin as JSON and the response is written to stdout.

Hosts call the command with --plugin-info first to learn its protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			srv := server.New(cfg, newLogger(cmd, cmd.ErrOrStderr()).Named("serve"))

			proto := plugin.PluginTypeGoPlugin
			if jsonMode {
				proto = plugin.PluginTypeJSON
			}

			if pluginInfo {
				return srv.WriteInfo(cmd.OutOrStdout(), proto)
			}
			if jsonMode {
				ctx := cmd.Context()
				if ctx == nil {
					ctx = context.Background()
				}
				return srv.ServeJSON(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}

			srv.Serve()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, strings.TrimPrefix(executor.JSONFlag, "--"), false, "serve one JSON request on stdin/stdout")
	cmd.Flags().BoolVar(&pluginInfo, strings.TrimPrefix(protocol.InfoFlag, "--"), false, "print plugin metadata as JSON and exit")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringP("algorithm", "a", string(distil.DefaultConfig().Algorithm), "default quantization algorithm")
	cmd.Flags().Float64("threshold", distil.DefaultConfig().UniquenessThreshold, "CIEDE2000 distance below which colours are merged")

	return cmd
}
