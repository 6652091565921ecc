// Package server exposes the toolbox over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	toolbox "github.com/porticus-lab/go-toolbox"
	"github.com/porticus-lab/go-toolbox/internal/artifact"
	"github.com/porticus-lab/go-toolbox/internal/convert"
	"github.com/porticus-lab/go-toolbox/internal/draft"
	toolboxmiddleware "github.com/porticus-lab/go-toolbox/internal/server/middleware"
	"github.com/porticus-lab/go-toolbox/internal/shortener"
	"github.com/porticus-lab/go-toolbox/internal/youtube"
)

// PDFExporter renders HTML into a PDF. *toolbox.Exporter satisfies it.
type PDFExporter interface {
	Export(ctx context.Context, src toolbox.Source, pg *toolbox.PageConfig) (*toolbox.Result, error)
}

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
	config Config
}

// Dependencies are the services behind the routes. Sink may be nil.
type Dependencies struct {
	Exporter  PDFExporter
	Drafts    draft.Store
	Links     *shortener.Service
	YouTube   *youtube.Service
	Converter *convert.Converter
	Sink      artifact.Sink
	Now       func() time.Time
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	deps := config.Dependencies
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handler{deps: deps}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(toolboxmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/s/{code}", h.FollowLink)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Health)

		r.Post("/invoices/{format}", h.ExportInvoice)
		r.Get("/drafts/invoice", h.LoadDraft)
		r.Put("/drafts/invoice", h.SaveDraft)

		r.Post("/newsletters/{format}", h.ExportNewsletter)

		r.Post("/links", h.Shorten)
		r.Get("/links/stats", h.LinkStats)

		r.Post("/youtube/info", h.VideoInfo)
		r.Post("/youtube/transcript", h.Transcript)
		r.Post("/youtube/download", h.DownloadVideo)

		r.Post("/convert/{category}", h.Convert)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		config: config,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is done, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		timeout := w.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		// Give outstanding requests a deadline for completion.
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := w.server.Shutdown(sctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		return err
	}
}
