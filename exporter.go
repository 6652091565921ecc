package toolbox

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/jung-kurt/gofpdf"

	"github.com/porticus-lab/go-toolbox/internal/pdf"
)

// Source describes the document to export.
type Source struct {
	// HTML is a complete HTML document.
	HTML string

	// Selector picks the element to capture. Defaults to "body".
	Selector string

	// Filename is reported back in the Result. Defaults to "document.pdf".
	Filename string
}

// Exporter turns HTML documents into paginated PDF files.
//
// An Exporter manages a headless browser instance that is reused across
// exports. Every export runs in its own tab, so an Exporter is safe for
// concurrent use.
//
// Call [Exporter.Close] when the Exporter is no longer needed to release
// browser resources.
type Exporter struct {
	cfg           exporterConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewExporter creates an Exporter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Exporter.Close] when finished.
func NewExporter(opts ...Option) (*Exporter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("toolbox: starting browser: %w", err)
	}
	cfg.logger.Debug().Str("chrome", cfg.chromePath).Msg("browser started")

	return &Exporter{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Exporter, including the
// browser process. Close is idempotent.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.browserCancel()
	e.allocCancel()
	return nil
}

// Export renders src and returns it as a PDF.
// If pg is nil, [DefaultPageConfig] values are used.
func (e *Exporter) Export(ctx context.Context, src Source, pg *PageConfig) (*Result, error) {
	if err := e.checkClosed(); err != nil {
		return nil, err
	}
	if src.Selector == "" {
		src.Selector = "body"
	}
	if src.Filename == "" {
		src.Filename = "document.pdf"
	}

	f, err := os.CreateTemp("", "toolbox-*.html")
	if err != nil {
		return nil, fmt.Errorf("toolbox: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(src.HTML); err != nil {
		f.Close()
		return nil, fmt.Errorf("toolbox: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("toolbox: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("toolbox: resolving path: %w", err)
	}

	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	// A fresh tab isolates the export from everything else the browser does.
	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)
	defer tabCancel()
	// Tie the tab to the caller's deadline and cancellation.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	resolved := pg.resolved()
	log := e.cfg.logger.With().Str("file", src.Filename).Str("selector", src.Selector).Logger()

	var res *Result
	if resolved.Mode == Print {
		res, err = e.print(tabCtx, "file://"+abs, resolved)
	} else {
		res, err = e.raster(tabCtx, "file://"+abs, src.Selector, resolved)
	}
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", err, ctx.Err())
		}
		log.Error().Err(err).Msg("export failed")
		return nil, err
	}
	res.filename = src.Filename
	log.Info().Int("pages", res.pages).Int("bytes", res.Len()).Strs("excluded", res.excluded).Msg("exported")
	return res, nil
}

// raster captures the element as one tall image and lays it out as
// consecutive page-height bands.
func (e *Exporter) raster(tabCtx context.Context, targetURL, selector string, pg PageConfig) (*Result, error) {
	vw, vh := pg.viewport()

	var (
		height   float64
		excluded []string
		loaded   bool
	)
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(vw, vh, chromedp.EmulateScale(e.cfg.deviceScale)),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(printSafeJS, selector, vw), &height),
	); err != nil {
		return nil, fmt.Errorf("%w: loading document: %w", ErrExportFailed, err)
	}
	if height < 0 {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, selector)
	}

	var tasks chromedp.Tasks
	if !e.cfg.allowTaint {
		tasks = append(tasks, chromedp.Evaluate(taintedImagesJS, &excluded))
	}
	tasks = append(tasks,
		chromedp.Evaluate(waitImagesJS, &loaded, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.Evaluate(fmt.Sprintf(measureJS, selector), &height),
	)
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, fmt.Errorf("%w: waiting for images: %w", ErrExportFailed, err)
	}
	if height < 0 {
		// The element itself was a removed cross-origin image.
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, selector)
	}

	var img image.Image
	if height > 0 {
		var shot []byte
		if err := chromedp.Run(tabCtx, chromedp.Screenshot(selector, &shot, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("%w: rasterizing: %w", ErrExportFailed, err)
		}
		var err error
		if img, err = png.Decode(bytes.NewReader(shot)); err != nil {
			return nil, fmt.Errorf("%w: decoding raster: %w", ErrExportFailed, err)
		}
	}

	data, pages, err := layoutBands(img, pg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return &Result{data: data, pages: pages, excluded: excluded}, nil
}

// layoutBands writes one PDF page per band of img, each scaled to the full
// page width. A nil or empty image yields a single blank page.
func layoutBands(img image.Image, pg PageConfig) ([]byte, int, error) {
	w, h := pg.paperDimensions()
	wMM, hMM := w*10, h*10

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: wMM, Ht: hMM},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	var bands []Band
	if img != nil {
		b := img.Bounds()
		bands = Paginate(b.Dy(), bandPageHeight(b.Dx(), wMM, hMM))
	}
	if len(bands) == 0 {
		doc.AddPage()
	}

	sub, _ := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	for i, band := range bands {
		b := img.Bounds()
		var part image.Image = img
		if sub != nil {
			part = sub.SubImage(image.Rect(b.Min.X, b.Min.Y+band.Top, b.Max.X, b.Min.Y+band.Top+band.Height))
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, part); err != nil {
			return nil, 0, fmt.Errorf("encoding band %d: %w", i, err)
		}
		name := fmt.Sprintf("band-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		doc.AddPage()
		doc.RegisterImageOptionsReader(name, opts, &buf)
		doc.ImageOptions(name, 0, 0, wMM, float64(band.Height)*wMM/float64(b.Dx()), false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, 0, fmt.Errorf("writing pdf: %w", err)
	}
	return out.Bytes(), doc.PageCount(), nil
}

// print hands the document to the browser's print engine.
func (e *Exporter) print(tabCtx context.Context, targetURL string, pg PageConfig) (*Result, error) {
	width, height := pg.paperInches()
	marginTop, marginRight, marginBottom, marginLeft := pg.marginInches()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Orientation is already folded into the paper dimensions.
			params := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(marginTop).
				WithMarginRight(marginRight).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithScale(pg.Scale).
				WithPrintBackground(pg.PrintBackground).
				WithDisplayHeaderFooter(pg.DisplayHeaderFooter)

			if pg.HeaderTemplate != "" {
				params = params.WithHeaderTemplate(pg.HeaderTemplate)
			}
			if pg.FooterTemplate != "" {
				params = params.WithFooterTemplate(pg.FooterTemplate)
			}

			var err error
			buf, _, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("%w: printing: %w", ErrExportFailed, err)
	}

	pages, err := pdf.CountPages(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading printed pdf: %w", ErrExportFailed, err)
	}
	return &Result{data: buf, pages: pages}, nil
}

func (e *Exporter) checkClosed() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// Export renders src using a temporary [Exporter].
// This is convenient for one-off exports. For repeated use, create an
// [Exporter] with [NewExporter] to reuse the browser instance.
func Export(ctx context.Context, src Source, pg *PageConfig, opts ...Option) (*Result, error) {
	exp, err := NewExporter(opts...)
	if err != nil {
		return nil, err
	}
	defer exp.Close()
	return exp.Export(ctx, src, pg)
}
