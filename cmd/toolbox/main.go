// Package main is the entry point for the toolbox CLI: invoice and
// newsletter exports, file conversion, link shortening, YouTube tools and
// the HTTP server that serves them all.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	toolbox "github.com/porticus-lab/go-toolbox"
	"github.com/porticus-lab/go-toolbox/internal/artifact"
	"github.com/porticus-lab/go-toolbox/internal/config"
	"github.com/porticus-lab/go-toolbox/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	v      *viper.Viper
	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd is the base command for the toolbox CLI.
var rootCmd = &cobra.Command{
	Use:   "toolbox",
	Short: "Free document and media utilities",
	Long: `toolbox renders invoices and newsletters to PDF, Excel, Word and HTML,
converts uploaded files, shortens links and works with YouTube videos.

Every tool is a subcommand; "toolbox serve" exposes them over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = c
		logger, err = logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		if f := v.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./toolbox.yaml or ~/.config/toolbox/toolbox.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or console")
	rootCmd.PersistentFlags().Bool("publish", false, "also publish outputs to the configured artifact sink")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	nv, err := config.New(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	v = nv
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// newExporter starts a browser configured from the browser section.
func newExporter() (*toolbox.Exporter, error) {
	b := cfg.Browser
	opts := []toolbox.Option{
		toolbox.WithTimeout(b.Timeout),
		toolbox.WithLogger(logger),
	}
	if b.ChromePath != "" {
		opts = append(opts, toolbox.WithChromePath(b.ChromePath))
	}
	if b.NoSandbox {
		opts = append(opts, toolbox.WithNoSandbox())
	}
	if b.AutoDownload {
		opts = append(opts, toolbox.WithAutoDownload())
	}
	if b.DeviceScale > 0 {
		opts = append(opts, toolbox.WithDeviceScale(b.DeviceScale))
	}
	return toolbox.NewExporter(opts...)
}

// newSink returns the configured artifact sink, or nil.
func newSink(ctx context.Context) (artifact.Sink, error) {
	return artifact.FromConfig(ctx, cfg.Artifacts)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
