// Package convert validates uploaded files and re-emits them in a target
// format. Images are re-encoded when Go has a codec for both ends; every
// other category returns the original bytes under the new name.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Category groups files that share an allow-list and size ceiling.
type Category string

const (
	Image    Category = "image"
	Audio    Category = "audio"
	Video    Category = "video"
	Document Category = "document"
	Archive  Category = "archive"
	PDF      Category = "pdf"
)

// Rules describes what a category accepts and produces.
type Rules struct {
	MaxSizeMB  int
	Types      []string // MIME types; "x/*" matches a whole family
	Extensions []string
	Formats    []string // output formats, first is the default
	Step       int      // synthetic progress increment
	Interval   time.Duration
	// OutputName is the download name without extension.
	OutputName string
}

var rules = map[Category]Rules{
	Image: {
		MaxSizeMB:  10,
		Types:      []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff", "image/svg+xml"},
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".svg"},
		Formats:    []string{"png", "jpg", "webp", "gif"},
		Step:       10,
		Interval:   200 * time.Millisecond,
		OutputName: "converted-image",
	},
	Audio: {
		MaxSizeMB:  50,
		Types:      []string{"audio/mpeg", "audio/wav", "audio/ogg", "audio/flac", "audio/aac", "audio/mp4"},
		Extensions: []string{".mp3", ".wav", ".ogg", ".flac", ".aac", ".m4a"},
		Formats:    []string{"mp3", "wav", "ogg", "flac", "aac", "m4a"},
		Step:       5,
		Interval:   300 * time.Millisecond,
		OutputName: "converted-audio",
	},
	Video: {
		MaxSizeMB:  100,
		Types:      []string{"video/mp4", "video/webm", "video/ogg", "video/quicktime", "video/x-msvideo", "video/x-matroska"},
		Extensions: []string{".mp4", ".webm", ".ogg", ".mov", ".avi", ".mkv"},
		Formats:    []string{"mp4", "webm", "avi", "mov", "mkv"},
		Step:       2,
		Interval:   300 * time.Millisecond,
		OutputName: "converted-video",
	},
	Document: {
		MaxSizeMB: 20,
		Types: []string{
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-powerpoint",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"text/plain",
			"application/rtf",
		},
		Extensions: []string{".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt", ".rtf"},
		Formats:    []string{"docx", "pdf", "txt", "rtf", "odt"},
		Step:       5,
		Interval:   200 * time.Millisecond,
		OutputName: "converted-document",
	},
	Archive: {
		MaxSizeMB:  100,
		Types:      []string{"application/zip", "application/x-rar-compressed", "application/x-7z-compressed", "application/x-tar", "application/gzip"},
		Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz"},
		Formats:    []string{"zip", "tar", "gz", "7z"},
		Step:       5,
		Interval:   200 * time.Millisecond,
		OutputName: "converted-archive",
	},
	PDF: {
		MaxSizeMB:  10,
		Types:      []string{"application/pdf"},
		Extensions: []string{".pdf"},
		Formats:    []string{"docx", "xlsx", "pptx", "jpg", "png"},
		Step:       5,
		Interval:   200 * time.Millisecond,
		OutputName: "converted-file",
	},
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{Image, Audio, Video, Document, Archive, PDF}
}

// RulesFor returns the rules of c.
func RulesFor(c Category) (Rules, error) {
	r, ok := rules[c]
	if !ok {
		return Rules{}, fmt.Errorf("%w: category %q", apperr.ErrUnsupportedValue, c)
	}
	return r, nil
}

// Format validates target against the category's output formats. An
// empty target selects the default.
func (r Rules) Format(target string) (string, error) {
	target = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(target), "."))
	if target == "" {
		return r.Formats[0], nil
	}
	for _, f := range r.Formats {
		if f == target {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: output format %q, expected one of %s", apperr.ErrUnsupportedValue, target, strings.Join(r.Formats, ", "))
}

// outputMIME returns the content type a converted file is served with.
func outputMIME(c Category, format string) string {
	switch c {
	case Image:
		if format == "jpg" {
			return "image/jpeg"
		}
		return "image/" + format
	case Audio:
		return "audio/" + format
	case Video:
		return "video/" + format
	case PDF:
		// The pass-through keeps the PDF bytes.
		return "application/pdf"
	}
	return "application/" + format
}
