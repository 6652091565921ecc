package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sync"
	"time"

	"github.com/rs/zerolog"

	// Decoders for the image formats the upload accepts.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Quality bounds for lossy output.
const (
	MinQuality     = 10
	MaxQuality     = 100
	DefaultQuality = 80
)

// Video resolutions offered for video targets.
var Resolutions = []string{"480p", "720p", "1080p", "1440p", "2160p"}

// Options tune a conversion. Zero values take defaults.
type Options struct {
	Quality    int
	Resolution string
	// Logger receives per-conversion events. Nil disables logging.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality < MinQuality || o.Quality > MaxQuality {
		return o, fmt.Errorf("%w: quality %d outside %d..%d", apperr.ErrUnsupportedValue, o.Quality, MinQuality, MaxQuality)
	}
	if o.Resolution == "" {
		o.Resolution = "720p"
	}
	for _, r := range Resolutions {
		if r == o.Resolution {
			return o, nil
		}
	}
	return o, fmt.Errorf("%w: resolution %q", apperr.ErrUnsupportedValue, o.Resolution)
}

// Output is a converted file ready for download.
type Output struct {
	Name string
	MIME string
	Data []byte
	// Transcoded reports whether Data was re-encoded. When false Data holds
	// the uploaded bytes unchanged.
	Transcoded bool
}

// ProgressFunc observes conversion progress in percent. It is called from
// a background goroutine and never after Convert returns.
type ProgressFunc func(percent int)

// Progress milestones shared by every category.
const (
	progressStart = 10
	progressCap   = 90
	progressDone  = 100
)

// Converter runs conversions. The zero value is not usable; use New.
type Converter struct {
	// tick overrides the per-category interval in tests.
	tick time.Duration
}

// New returns a Converter with the per-category progress cadence.
func New() *Converter {
	return &Converter{}
}

// Convert validates f for category c and emits it as target. progress, if
// not nil, sees 10 first, then the category's step up to 90, then 100 on
// success.
func (cv *Converter) Convert(ctx context.Context, c Category, f File, target string, opts Options, progress ProgressFunc) (*Output, error) {
	r, err := RulesFor(c)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(f); err != nil {
		return nil, err
	}
	format, err := r.Format(target)
	if err != nil {
		return nil, err
	}
	if opts, err = opts.withDefaults(); err != nil {
		return nil, err
	}

	stop := cv.startProgress(r, progress)
	out, err := convert(ctx, c, f, format, opts)
	stop()
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(progressDone)
	}

	if opts.Logger != nil {
		opts.Logger.Info().
			Str("category", string(c)).
			Str("source", f.Name).
			Str("output", out.Name).
			Bool("transcoded", out.Transcoded).
			Int("bytes", len(out.Data)).
			Msg("file converted")
	}
	return out, nil
}

// startProgress reports synthetic progress until the returned func is
// called. The func blocks until the reporter goroutine has exited.
func (cv *Converter) startProgress(r Rules, progress ProgressFunc) func() {
	if progress == nil {
		return func() {}
	}
	interval := r.Interval
	if cv.tick > 0 {
		interval = cv.tick
	}

	progress(progressStart)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		p := progressStart
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if p >= progressCap {
					continue
				}
				p = min(p+r.Step, progressCap)
				progress(p)
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func convert(ctx context.Context, c Category, f File, format string, opts Options) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("convert %s: %w", f.Name, err)
	}
	r := rules[c]
	out := &Output{
		Name: r.OutputName + "." + format,
		MIME: outputMIME(c, format),
		Data: f.Data,
	}
	if c != Image {
		return out, nil
	}
	data, ok, err := reencode(f.Data, format, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("%w: converting %s to %s: %w", apperr.ErrExportFailed, f.Name, format, err)
	}
	if ok {
		out.Data = data
		out.Transcoded = true
	}
	return out, nil
}

// reencode decodes src and writes it as format. It reports false when the
// source cannot be decoded (SVG) or no encoder exists (WebP); the caller
// then keeps the original bytes.
func reencode(src []byte, format string, quality int) ([]byte, bool, error) {
	if format == "webp" {
		return nil, false, nil
	}
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}
