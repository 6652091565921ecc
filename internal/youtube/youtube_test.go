package youtube

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestValidateURL(t *testing.T) {
	for _, ok := range []string{
		videoURL,
		"youtube.com/watch?v=x",
		"https://youtu.be/abc",
		"http://youtube.com/shorts/abc",
	} {
		assert.NoError(t, ValidateURL(ok), ok)
	}
	assert.ErrorIs(t, ValidateURL(""), apperr.ErrRequired)
	assert.ErrorIs(t, ValidateURL("https://vimeo.com/123"), apperr.ErrInvalidURL)
	assert.ErrorIs(t, ValidateURL("https://youtube.com/"), apperr.ErrInvalidURL)
}

func TestAnalyze(t *testing.T) {
	info, err := New(Delays{}).Analyze(context.Background(), videoURL)
	require.NoError(t, err)
	assert.Equal(t, "Sample YouTube Video", info.Title)
	require.Len(t, info.Formats, 5)
	assert.Equal(t, "360p-mp4", info.Formats[0].Key())

	f, ok := info.Lookup("Audio Only-mp3")
	assert.True(t, ok)
	assert.Equal(t, "5 MB", f.Size)
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultDelays).Analyze(ctx, videoURL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "youtube-sample-youtube-video.mp4", Filename("Sample YouTube Video", "mp4"))
	assert.Equal(t, "youtube-a-b--c.mp3", Filename("A&B, C", "mp3"))
}

func TestDownload(t *testing.T) {
	s := New(Delays{Download: 30 * time.Millisecond, Tick: time.Millisecond})
	info, err := s.Analyze(context.Background(), videoURL)
	require.NoError(t, err)

	var mu sync.Mutex
	var got []int
	d, err := s.Download(context.Background(), info, "720p-mp4", true, func(p int) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, "youtube-sample-youtube-video.mp4", d.Name)
	assert.Equal(t, "video/mp4", d.MIME)
	assert.Len(t, d.Data, SampleSize)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, 0, got[0])
	assert.Equal(t, 100, got[len(got)-1])
	for i := 1; i < len(got)-1; i++ {
		assert.Equal(t, got[i-1]+5, got[i])
	}
}

func TestDownload_Audio(t *testing.T) {
	s := New(Delays{})
	info, err := s.Analyze(context.Background(), videoURL)
	require.NoError(t, err)
	d, err := s.Download(context.Background(), info, "Audio Only-mp3", true, nil)
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", d.MIME)
	assert.True(t, strings.HasSuffix(d.Name, ".mp3"))
}

func TestDownload_Errors(t *testing.T) {
	s := New(Delays{})
	info, err := s.Analyze(context.Background(), videoURL)
	require.NoError(t, err)

	_, err = s.Download(context.Background(), info, "720p-mp4", false, nil)
	assert.ErrorIs(t, err, apperr.ErrTermsRequired)
	assert.EqualError(t, err, "Please acknowledge the terms of use before downloading.")

	_, err = s.Download(context.Background(), info, "4k-mkv", true, nil)
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var last int
	_, err = New(DefaultDelays).Download(ctx, info, "720p-mp4", true, func(p int) { last = p })
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, 100, last)
}

func TestTranscript(t *testing.T) {
	tr, err := New(Delays{}).Transcript(context.Background(), videoURL, "")
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Language)

	lines := strings.Split(strings.TrimSpace(tr.Text), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "[00:00:00] Hello and welcome to this video.", lines[0])
	assert.Equal(t, "[00:00:55] Don't forget to like and subscribe for more content.", lines[11])
	assert.True(t, strings.HasPrefix(tr.Plain(), "Hello and welcome"))
	assert.NotContains(t, tr.Plain(), "[00:")
}

func TestTranscript_Language(t *testing.T) {
	s := New(Delays{})
	tr, err := s.Transcript(context.Background(), videoURL, "ja")
	require.NoError(t, err)
	assert.Equal(t, "ja", tr.Language)

	_, err = s.Transcript(context.Background(), videoURL, "xx")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
	_, err = s.Transcript(context.Background(), "nope", "en")
	assert.ErrorIs(t, err, apperr.ErrInvalidURL)
}
