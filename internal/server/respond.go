package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
	"github.com/porticus-lab/go-toolbox/internal/draft"
	"github.com/porticus-lab/go-toolbox/internal/shortener"
)

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	if errors.Is(err, draft.ErrCorrupt) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, shortener.ErrFull) {
		return http.StatusServiceUnavailable
	}
	switch apperr.Kind(err) {
	case apperr.ErrFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.ErrInvalidType:
		return http.StatusUnsupportedMediaType
	case apperr.ErrElementNotFound:
		return http.StatusUnprocessableEntity
	case apperr.ErrRequired, apperr.ErrInvalidURL, apperr.ErrUnsupportedValue, apperr.ErrTermsRequired:
		return http.StatusBadRequest
	case apperr.ErrDraftNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError sends the notification for err. Errors outside the taxonomy
// are logged and reported with the fallback message only.
func writeError(w http.ResponseWriter, r *http.Request, err error, opts apperr.Options) {
	logger := zerolog.Ctx(r.Context())
	status := statusOf(err)
	shown := err
	if apperr.Kind(err) == nil && !errors.Is(err, draft.ErrCorrupt) {
		shown = nil
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(opts.Title)
	} else {
		logger.Debug().Err(err).Int("status", status).Msg(opts.Title)
	}
	writeJSON(w, r, status, apperr.Notify(shown, opts))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

// writeFile sends body as a download named name.
func writeFile(w http.ResponseWriter, r *http.Request, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().
			Err(err).
			Str("file", name).
			Msg("failed to write download")
	}
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body: %v", apperr.ErrUnsupportedValue, err)
	}
	return nil
}

// maxJSONBody bounds JSON requests. Invoices may carry an inline logo.
const maxJSONBody = 8 << 20
