// Package youtube offers video analysis, transcripts and downloads for
// YouTube links. No network calls are made: metadata, transcripts and media
// are sample data shaped like the real thing.
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

var urlRE = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

// ValidateURL checks that raw looks like a YouTube video link.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperr.New(apperr.ErrRequired, "Please enter a YouTube URL.")
	}
	if !urlRE.MatchString(raw) {
		return apperr.New(apperr.ErrInvalidURL, "Please enter a valid YouTube URL.")
	}
	return nil
}

// Format is one downloadable rendition.
type Format struct {
	Quality string `json:"quality"`
	Format  string `json:"format"`
	Size    string `json:"size"`
}

// Key identifies the format as "<quality>-<format>", e.g. "720p-mp4".
func (f Format) Key() string {
	return f.Quality + "-" + f.Format
}

// Info describes an analyzed video.
type Info struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Duration  string   `json:"duration"`
	Author    string   `json:"author"`
	Formats   []Format `json:"formats"`
}

// Lookup returns the format with the given key.
func (i Info) Lookup(key string) (Format, bool) {
	for _, f := range i.Formats {
		if f.Key() == key {
			return f, true
		}
	}
	return Format{}, false
}

// Delays simulate the latency of each operation.
type Delays struct {
	Analyze    time.Duration
	Transcript time.Duration
	Download   time.Duration
	// Tick is the progress interval during downloads.
	Tick time.Duration
}

// DefaultDelays are the latencies users see in the web tool.
var DefaultDelays = Delays{
	Analyze:    1500 * time.Millisecond,
	Transcript: 2000 * time.Millisecond,
	Download:   4000 * time.Millisecond,
	Tick:       200 * time.Millisecond,
}

// Service runs the YouTube tools.
type Service struct {
	delays Delays
}

// New returns a Service with the given delays.
func New(d Delays) *Service {
	if d.Tick <= 0 {
		d.Tick = DefaultDelays.Tick
	}
	return &Service{delays: d}
}

// Analyze validates rawURL and returns the video's info.
func (s *Service) Analyze(ctx context.Context, rawURL string) (Info, error) {
	if err := ValidateURL(rawURL); err != nil {
		return Info{}, err
	}
	if err := sleep(ctx, s.delays.Analyze); err != nil {
		return Info{}, fmt.Errorf("analyze %s: %w", rawURL, err)
	}
	return Info{
		URL:       rawURL,
		Title:     "Sample YouTube Video",
		Thumbnail: "/placeholder.svg?height=720&width=1280",
		Duration:  "10:30",
		Author:    "Sample Channel",
		Formats: []Format{
			{Quality: "360p", Format: "mp4", Size: "20 MB"},
			{Quality: "480p", Format: "mp4", Size: "35 MB"},
			{Quality: "720p", Format: "mp4", Size: "70 MB"},
			{Quality: "1080p", Format: "mp4", Size: "120 MB"},
			{Quality: "Audio Only", Format: "mp3", Size: "5 MB"},
		},
	}, nil
}

// Download is a produced media file.
type Download struct {
	Name string
	MIME string
	Data []byte
}

// SampleSize is the size of every downloaded file.
const SampleSize = 1 << 20

var slugRE = regexp.MustCompile(`[^a-z0-9]`)

// Filename returns the download name for title in format.
func Filename(title, format string) string {
	return "youtube-" + slugRE.ReplaceAllString(strings.ToLower(title), "-") + "." + format
}

// Download fetches the rendition formatKey of info. The user must have
// acknowledged the terms of use. progress, if not nil, sees 0, then +5
// every tick, then 100 on success.
func (s *Service) Download(ctx context.Context, info Info, formatKey string, acknowledged bool, progress func(int)) (*Download, error) {
	if !acknowledged {
		return nil, apperr.New(apperr.ErrTermsRequired, "Please acknowledge the terms of use before downloading.")
	}
	f, ok := info.Lookup(formatKey)
	if !ok {
		return nil, fmt.Errorf("%w: format %q", apperr.ErrUnsupportedValue, formatKey)
	}

	stop := s.startProgress(progress)
	err := sleep(ctx, s.delays.Download)
	stop()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", info.URL, err)
	}
	if progress != nil {
		progress(100)
	}

	return &Download{
		Name: Filename(info.Title, f.Format),
		MIME: mediaType(f.Format),
		Data: make([]byte, SampleSize),
	}, nil
}

func mediaType(format string) string {
	if format == "mp3" {
		return "audio/mpeg"
	}
	return "video/" + format
}

func (s *Service) startProgress(progress func(int)) func() {
	if progress == nil {
		return func() {}
	}
	progress(0)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(s.delays.Tick)
		defer t.Stop()
		for p := 5; p < 100; p += 5 {
			select {
			case <-done:
				return
			case <-t.C:
				progress(p)
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
