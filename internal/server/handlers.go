package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	toolbox "github.com/porticus-lab/go-toolbox"
	"github.com/porticus-lab/go-toolbox/internal/apperr"
	"github.com/porticus-lab/go-toolbox/internal/convert"
	"github.com/porticus-lab/go-toolbox/internal/draft"
	"github.com/porticus-lab/go-toolbox/internal/invoice"
	"github.com/porticus-lab/go-toolbox/internal/newsletter"
	"github.com/porticus-lab/go-toolbox/internal/shortener"
	"github.com/porticus-lab/go-toolbox/internal/youtube"
)

type handler struct {
	deps Dependencies
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// deliver publishes the file through the sink, when one is configured, and
// sends it to the client. A failed upload does not fail the download.
func (h *handler) deliver(w http.ResponseWriter, r *http.Request, name, contentType string, body []byte) {
	if h.deps.Sink != nil {
		loc, err := h.deps.Sink.Put(r.Context(), name, contentType, body)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("file", name).Msg("failed to publish artifact")
		} else {
			w.Header().Set("X-Artifact-Location", loc)
		}
	}
	writeFile(w, r, name, contentType, body)
}

func (h *handler) exportPDF(ctx context.Context, html, selector, filename string, size toolbox.PageSize) (*toolbox.Result, error) {
	return h.deps.Exporter.Export(ctx, toolbox.Source{
		HTML:     html,
		Selector: "#" + selector,
		Filename: filename,
	}, &toolbox.PageConfig{Size: size})
}

type invoiceRequest struct {
	Data    *invoice.Data   `json:"data"`
	Options invoice.Options `json:"options"`
}

func (h *handler) ExportInvoice(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Export failed", Fallback: "There was an error exporting your invoice. Please try again."}
	format := chi.URLParam(r, "format")

	var req invoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, opts)
		return
	}
	if req.Data == nil {
		req.Data = invoice.Default(h.deps.Now())
	}
	d := req.Data
	d.Recalculate()
	if err := d.Validate(); err != nil {
		writeError(w, r, err, opts)
		return
	}

	switch format {
	case "pdf":
		html, err := invoice.Render(d, req.Options)
		if err != nil {
			writeError(w, r, err, opts)
			return
		}
		size := toolbox.A4
		if req.Options.Paper == invoice.Letter {
			size = toolbox.Letter
		}
		res, err := h.exportPDF(r.Context(), html, invoice.Selector, d.Filename("pdf"), size)
		if err != nil {
			writeError(w, r, err, opts)
			return
		}
		h.deliver(w, r, res.Filename(), "application/pdf", res.Bytes())
	case "xlsx":
		b, err := invoice.XLSX(d)
		if err != nil {
			writeError(w, r, err, opts)
			return
		}
		h.deliver(w, r, d.Filename("xlsx"), invoice.MIMEXLSX, b)
	case "docx":
		b, err := invoice.Word(d, req.Options)
		if err != nil {
			writeError(w, r, err, opts)
			return
		}
		h.deliver(w, r, d.Filename("docx"), invoice.MIMEDOCX, b)
	case "html":
		html, err := invoice.Render(d, req.Options)
		if err != nil {
			writeError(w, r, err, opts)
			return
		}
		h.deliver(w, r, d.Filename("html"), invoice.MIMEHTML, []byte(html))
	default:
		writeError(w, r, apperr.New(apperr.ErrUnsupportedValue, "Unsupported export format: "+format), opts)
	}
}

func (h *handler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Error loading draft", Fallback: "There was an error loading your draft."}
	d, err := h.deps.Drafts.Load(r.Context(), draft.InvoiceKey)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

func (h *handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Error saving draft", Fallback: "There was an error saving your draft."}
	var d invoice.Data
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, r, err, opts)
		return
	}
	d.Recalculate()
	if err := h.deps.Drafts.Save(r.Context(), draft.InvoiceKey, &d); err != nil {
		writeError(w, r, err, opts)
		return
	}
	writeJSON(w, r, http.StatusOK, apperr.Success("Draft Saved", "Your invoice has been saved as a draft."))
}

type newsletterRequest struct {
	Data     *newsletter.Data `json:"data"`
	Template string           `json:"template"`
}

func (h *handler) ExportNewsletter(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Export failed", Fallback: "There was an error exporting your newsletter. Please try again."}
	format := chi.URLParam(r, "format")
	if format != "pdf" && format != "html" {
		writeError(w, r, apperr.New(apperr.ErrUnsupportedValue, "Unsupported export format: "+format), opts)
		return
	}

	var req newsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, opts)
		return
	}
	now := h.deps.Now()
	if req.Data == nil {
		req.Data = newsletter.Default(now)
	}
	tmpl, err := newsletter.ParseTemplate(req.Template)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	html, err := newsletter.Render(req.Data, tmpl, now.Year())
	if err != nil {
		writeError(w, r, err, opts)
		return
	}

	if format == "html" {
		h.deliver(w, r, newsletter.Filename(now, "html"), "text/html; charset=utf-8", []byte(html))
		return
	}
	res, err := h.exportPDF(r.Context(), html, newsletter.Selector, newsletter.Filename(now, "pdf"), toolbox.A4)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	h.deliver(w, r, res.Filename(), "application/pdf", res.Bytes())
}

func (h *handler) Shorten(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Shortening failed", Fallback: "Failed to shorten the URL. Please try again."}
	var req shortener.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, opts)
		return
	}
	link, err := h.deps.Links.Shorten(r.Context(), req)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	writeJSON(w, r, http.StatusCreated, link)
}

func (h *handler) LinkStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Links.Stats(shortener.Period(r.URL.Query().Get("period")))
	if err != nil {
		writeError(w, r, err, apperr.Options{Title: "Invalid period"})
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (h *handler) FollowLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.deps.Links.Resolve(chi.URLParam(r, "code"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, link.Target, http.StatusFound)
}

type videoRequest struct {
	URL          string `json:"url"`
	Language     string `json:"language,omitempty"`
	Format       string `json:"format,omitempty"`
	Acknowledged bool   `json:"acknowledged,omitempty"`
}

func (h *handler) VideoInfo(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Analysis failed", Fallback: "Failed to analyze the video. Please try again."}
	var req videoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, opts)
		return
	}
	info, err := h.deps.YouTube.Analyze(r.Context(), req.URL)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

func (h *handler) Transcript(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Generation failed", Fallback: "Failed to generate the transcript. Please try again."}
	var req videoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, opts)
		return
	}
	tr, err := h.deps.YouTube.Transcript(r.Context(), req.URL, req.Language)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	if r.URL.Query().Get("download") == "1" {
		writeFile(w, r, youtube.TranscriptFilename, "text/plain; charset=utf-8", []byte(tr.Text))
		return
	}
	writeJSON(w, r, http.StatusOK, tr)
}

func (h *handler) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Download failed", Fallback: "Failed to download the video. Please try again."}
	var req videoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, opts)
		return
	}
	if !req.Acknowledged {
		writeError(w, r, apperr.New(apperr.ErrTermsRequired, "Please acknowledge the terms of use before downloading."),
			apperr.Options{Title: "Terms acknowledgment required"})
		return
	}
	info, err := h.deps.YouTube.Analyze(r.Context(), req.URL)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	if req.Format == "" {
		req.Format = info.Formats[0].Key()
	}
	dl, err := h.deps.YouTube.Download(r.Context(), info, req.Format, req.Acknowledged, nil)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}
	writeFile(w, r, dl.Name, dl.MIME, dl.Data)
}

// maxUpload bounds multipart bodies at the largest category ceiling plus
// room for the form fields.
const maxUpload = 101 << 20

func (h *handler) Convert(w http.ResponseWriter, r *http.Request) {
	opts := apperr.Options{Title: "Conversion failed", Fallback: "There was an error converting your file."}
	cat := convert.Category(chi.URLParam(r, "category"))
	rules, err := convert.RulesFor(cat)
	if err != nil {
		writeError(w, r, err, opts)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperr.New(apperr.ErrFileTooLarge, "File too large. Maximum size is "+strconv.Itoa(rules.MaxSizeMB)+"MB.")
		} else {
			err = fmt.Errorf("%w: multipart form: %v", apperr.ErrUnsupportedValue, err)
		}
		writeError(w, r, err, apperr.Options{Title: "Invalid file"})
		return
	}
	file, err := readUpload(r)
	if err != nil {
		writeError(w, r, err, apperr.Options{Title: "Invalid file"})
		return
	}

	copts := convert.Options{Resolution: r.FormValue("resolution"), Logger: zerolog.Ctx(r.Context())}
	if q := strings.TrimSpace(r.FormValue("quality")); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, r, apperr.New(apperr.ErrUnsupportedValue, "Quality must be a number between 10 and 100."), opts)
			return
		}
		copts.Quality = n
	}

	out, err := h.deps.Converter.Convert(r.Context(), cat, file, r.FormValue("format"), copts, nil)
	if err != nil {
		title := opts.Title
		if k := apperr.Kind(err); k == apperr.ErrFileTooLarge || k == apperr.ErrInvalidType {
			title = "Invalid file"
		}
		writeError(w, r, err, apperr.Options{Title: title, Fallback: opts.Fallback})
		return
	}
	h.deliver(w, r, out.Name, out.MIME, out.Data)
}
