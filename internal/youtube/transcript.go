package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Languages maps supported transcript language codes to their names.
var Languages = map[string]string{
	"en": "English", "es": "Spanish", "fr": "French", "de": "German",
	"it": "Italian", "pt": "Portuguese", "ru": "Russian", "ja": "Japanese",
	"zh": "Chinese", "hi": "Hindi", "ar": "Arabic",
}

// TranscriptFilename is the download name of a transcript.
const TranscriptFilename = "transcript.txt"

var sampleLines = []string{
	"Hello and welcome to this video.",
	"Today we're going to talk about web development.",
	"Specifically, we'll cover HTML, CSS, and JavaScript.",
	"HTML is the backbone of any website.",
	"It provides the structure for your content.",
	"CSS is used for styling your website.",
	"It makes your website look good and responsive.",
	"JavaScript adds interactivity to your website.",
	"It allows users to interact with your content.",
	"Together, these three technologies form the foundation of web development.",
	"Thanks for watching this video.",
	"Don't forget to like and subscribe for more content.",
}

// Transcript is the timestamped text of a video.
type Transcript struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

var stampRE = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\] `)

// Plain returns the transcript without timestamps.
func (t Transcript) Plain() string {
	return stampRE.ReplaceAllString(t.Text, "")
}

// Transcript generates the transcript of rawURL in lang ("en" when empty).
func (s *Service) Transcript(ctx context.Context, rawURL, lang string) (Transcript, error) {
	if err := ValidateURL(rawURL); err != nil {
		return Transcript{}, err
	}
	if lang == "" {
		lang = "en"
	}
	if _, ok := Languages[lang]; !ok {
		return Transcript{}, fmt.Errorf("%w: language %q", apperr.ErrUnsupportedValue, lang)
	}
	if err := sleep(ctx, s.delays.Transcript); err != nil {
		return Transcript{}, fmt.Errorf("transcript %s: %w", rawURL, err)
	}

	var b strings.Builder
	for i, line := range sampleLines {
		sec := i * 5
		fmt.Fprintf(&b, "[%02d:%02d:%02d] %s\n", sec/3600, sec/60%60, sec%60, line)
	}
	return Transcript{Language: lang, Text: b.String()}, nil
}
