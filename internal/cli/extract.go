package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/distil/internal/colour"
	"github.com/jmylchreest/distil/internal/distil"
	"github.com/jmylchreest/distil/internal/image"
	"github.com/jmylchreest/distil/internal/plugin/executor"
	"github.com/jmylchreest/distil/internal/plugin/server"
	"github.com/jmylchreest/distil/internal/quant"
	"github.com/jmylchreest/distil/internal/util/imagecache"
	"github.com/jmylchreest/distil/pkg/plugin"
)

// Output formats accepted by --format.
const (
	formatHex   = "hex"
	formatRGB   = "rgb"
	formatJSON  = "json"
	formatTable = "table"
)

type extractOptions struct {
	colours    int
	format     string
	output     string
	preview    bool
	algorithm  string
	threshold  float64
	configPath string
	downsample bool
	plugin     string
	cache      bool
	cacheDir   string
	refresh    bool
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <image|directory|url>",
		Short: "Extract the dominant colours of an image",
		Long: `Extract the dominant colours of a PNG or JPEG image, most prevalent first.

The image may be a local file, an HTTP(S) URL, or a directory (a random image
in it is used). Files compressed with xz, gzip or bzip2 are unpacked first.

Settings are layered: built-in defaults, then --config (TOML), then DISTIL_*
environment variables, then flags.

Examples:
  # Print the palette as hex codes
  distil extract wallpaper.jpg

  # Keep the 5 most prevalent colours, with terminal swatches
  distil extract -c 5 --preview wallpaper.png

  # JSON with counts, written to a file
  distil extract -f json -o palette.json wallpaper.jpg

  # Use the k-means quantizer and a looser merge threshold
  distil extract --algorithm kmeans --threshold 15 wallpaper.jpg

  # Run extraction in an external plugin process
  distil extract --plugin "distil serve" wallpaper.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.colours, "colours", "c", 0, "maximum number of colours to print (0 = all)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatHex, "output format (hex, rgb, json, table)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour swatches")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", string(quant.AlgorithmNeuQuant),
		fmt.Sprintf("quantization algorithm %v", quant.ValidAlgorithms()))
	cmd.Flags().Float64Var(&opts.threshold, "threshold", distil.DefaultConfig().UniquenessThreshold,
		"CIEDE2000 distance below which colours are merged")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML configuration file")
	cmd.Flags().BoolVar(&opts.downsample, "downsample", false, "shrink large images before quantization (faster, less accurate)")
	cmd.Flags().StringVar(&opts.plugin, "plugin", "", "distil through an external plugin command")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "cache images fetched from URLs")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "image cache directory (default: ~/.cache/distil/images)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch cached images")

	return cmd
}

func runExtract(cmd *cobra.Command, opts *extractOptions, target string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd, cmd.ErrOrStderr())

	if err := validateFormat(opts.format); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts.configPath)
	if err != nil {
		return err
	}

	path, err := image.ResolveImagePath(target)
	if err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	if err := image.ValidateImagePath(path); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	logger.Debug("loading image", "path", path)
	loader := image.NewSmartLoader().WithContext(ctx)
	if opts.cache {
		loader = loader.WithCache(imagecache.CacheOptions{CacheDir: opts.cacheDir, Refresh: opts.refresh})
	}
	data, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	var result *distil.Result
	if opts.plugin != "" {
		result, err = distilWithPlugin(ctx, logger, opts, cfg, path, data)
	} else {
		result, err = distilLocal(logger, opts, cfg, path, data)
	}
	if err != nil {
		return err
	}
	// Shares are relative to every quantized entry, not just the printed ones.
	total := result.Total()
	result = result.Truncate(opts.colours)
	logger.Debug("distilled palette", "colours", result.Len(), "total", total)

	if opts.output == "" {
		out := cmd.OutOrStdout()
		var swatcher *colour.Swatcher
		if opts.preview {
			swatcher = newSwatcher(out)
		}
		return writeResult(out, result, total, opts.format, swatcher)
	}

	file, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeResult(file, result, total, opts.format, nil); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("wrote palette", "path", opts.output)
	return nil
}

func writeResult(w io.Writer, result *distil.Result, total int, format string, swatcher *colour.Swatcher) error {
	rendered, err := formatResult(result, total, format, swatcher)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, rendered); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadConfig layers defaults, the config file, DISTIL_* variables and flags.
func loadConfig(cmd *cobra.Command, configPath string) (distil.Config, error) {
	cfg := distil.DefaultConfig()

	var err error
	if configPath != "" {
		if cfg, err = distil.LoadConfigFile(cfg, configPath); err != nil {
			return cfg, err
		}
	}
	if cfg, err = distil.ApplyEnv(cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("algorithm") {
		alg, _ := flags.GetString("algorithm")
		cfg.Algorithm = quant.Algorithm(strings.ToLower(alg))
	}
	if flags.Changed("threshold") {
		cfg.UniquenessThreshold, _ = flags.GetFloat64("threshold")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func distilLocal(logger hclog.Logger, opts *extractOptions, cfg distil.Config, path string, data []byte) (*distil.Result, error) {
	d, err := distil.New(cfg, nil, logger)
	if err != nil {
		return nil, err
	}

	if !opts.downsample {
		return d.DistilBytes(data)
	}

	img, _, err := image.Decode(data, path)
	if err != nil {
		return nil, err
	}
	small := distil.Downsample(img, cfg.MaxSampleCount)
	logger.Debug("downsampled image",
		"from", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"to", fmt.Sprintf("%dx%d", small.Bounds().Dx(), small.Bounds().Dy()))
	return d.Distil(small)
}

func distilWithPlugin(ctx context.Context, logger hclog.Logger, opts *extractOptions, cfg distil.Config, path string, data []byte) (*distil.Result, error) {
	fields := strings.Fields(opts.plugin)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty plugin command")
	}

	ex, err := executor.New(ctx, fields[0], logger, fields[1:]...)
	if err != nil {
		return nil, fmt.Errorf("failed to start plugin: %w", err)
	}
	defer ex.Close()

	logger.Debug("distilling through plugin", "plugin", ex.Info().Name, "protocol", ex.Protocol())
	return ex.DistilResult(ctx, plugin.DistilRequest{
		Image:     data,
		Source:    path,
		Algorithm: string(cfg.Algorithm),
		Config:    server.RequestConfig(cfg),
	})
}

// newSwatcher picks a colour profile for w: detected for terminals,
// forced 24-bit when the preview was requested for a pipe.
func newSwatcher(w io.Writer) *colour.Swatcher {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return colour.NewSwatcher(w)
	}
	return colour.NewTrueColourSwatcher(w)
}

func validateFormat(format string) error {
	switch format {
	case formatHex, formatRGB, formatJSON, formatTable:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", format)
	}
}

// formatResult renders result in format. Table shares are taken against total.
// A nil swatcher disables previews.
func formatResult(result *distil.Result, total int, format string, swatcher *colour.Swatcher) (string, error) {
	var sb strings.Builder

	switch format {
	case formatHex, formatRGB:
		for _, c := range result.Colors {
			text := c.Hex()
			if format == formatRGB {
				text = c.String()
			}
			if swatcher != nil {
				sb.WriteString(swatcher.Preview(c, 0))
				sb.WriteString(" ")
			}
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	case formatJSON:
		data, err := result.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		sb.Write(data)
		sb.WriteString("\n")
	case formatTable:
		sb.WriteString(resultTable(result, total, swatcher).Render())
	default:
		return "", validateFormat(format)
	}

	return sb.String(), nil
}

func resultTable(result *distil.Result, total int, swatcher *colour.Swatcher) *Table {
	headers := []string{"#", "HEX", "RGB", "COUNT", "SHARE"}
	if swatcher != nil {
		headers = append(headers, "PREVIEW")
	}
	t := NewTable(headers)
	t.AlignRight(0, 3, 4)

	for i, c := range result.Colors {
		share := 0.0
		if total > 0 {
			share = 100 * float64(result.Counts[i]) / float64(total)
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			c.Hex(),
			fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B),
			fmt.Sprintf("%d", result.Counts[i]),
			fmt.Sprintf("%.1f%%", share),
		}
		if swatcher != nil {
			row = append(row, swatcher.Preview(c, 0))
		}
		t.AddRow(row)
	}
	return t
}
