package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-toolbox/internal/convert"
	"github.com/porticus-lab/go-toolbox/internal/draft"
	"github.com/porticus-lab/go-toolbox/internal/server"
	"github.com/porticus-lab/go-toolbox/internal/shortener"
	"github.com/porticus-lab/go-toolbox/internal/youtube"
)

// shortenDelay matches the latency users of the web tool are used to.
const shortenDelay = time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the toolbox HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := newExporter()
		if err != nil {
			return err
		}
		defer e.Close()

		drafts, err := draft.Open(ctx, cfg.Drafts.Driver, cfg.Drafts.DSN)
		if err != nil {
			return err
		}
		defer drafts.Close()

		sink, err := newSink(ctx)
		if err != nil {
			return err
		}

		api := server.NewWebAPI(logger, server.Config{
			Addr:            cfg.Server.Addr(),
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			Dependencies: server.Dependencies{
				Exporter:  e,
				Drafts:    drafts,
				Links:     shortener.New(shortener.WithDelay(shortenDelay)),
				YouTube:   youtube.New(youtube.DefaultDelays),
				Converter: convert.New(),
				Sink:      sink,
			},
		})
		return api.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	serveCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		return cfg.Validate()
	}
	rootCmd.AddCommand(serveCmd)
}
