package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	img := rules[Image]
	tests := []struct {
		name string
		file File
		kind error
	}{
		{"declared type", File{Name: "a.bin", Type: "image/png", Data: []byte{1}}, nil},
		{"extension only", File{Name: "photo.JPG", Type: "application/octet-stream", Data: []byte{1}}, nil},
		{"sniffed", File{Name: "noext", Data: testPNG(t)}, nil},
		{"wrong type", File{Name: "notes.txt", Type: "text/plain", Data: []byte("hi")}, apperr.ErrInvalidType},
		{"too large", File{Name: "big.png", Type: "image/png", Data: make([]byte, 10<<20+1)}, apperr.ErrFileTooLarge},
		{"empty", File{}, apperr.ErrRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := img.Validate(tt.file)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	err := rules[Audio].Validate(File{Name: "big.mp3", Data: make([]byte, 50<<20+1)})
	assert.EqualError(t, err, "File too large. Maximum size is 50MB.")

	err = rules[PDF].Validate(File{Name: "a.doc", Type: "application/msword", Data: []byte{1}})
	assert.EqualError(t, err, "Invalid file format. Supported types: application/pdf, formats: PDF.")
}

func TestValidate_Wildcard(t *testing.T) {
	r := Rules{MaxSizeMB: 1, Types: []string{"image/*"}, Extensions: []string{".none"}}
	assert.NoError(t, r.Validate(File{Name: "x", Type: "image/avif", Data: []byte{1}}))
	assert.Error(t, r.Validate(File{Name: "x", Type: "video/mp4", Data: []byte{1}}))
}

func TestFormat(t *testing.T) {
	r := rules[Video]
	f, err := r.Format("")
	require.NoError(t, err)
	assert.Equal(t, "mp4", f)

	f, err = r.Format(".MKV")
	require.NoError(t, err)
	assert.Equal(t, "mkv", f)

	_, err = r.Format("gif")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
}

func TestRulesFor_Unknown(t *testing.T) {
	_, err := RulesFor("spreadsheet")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
	assert.Len(t, Categories(), 6)
}

func TestConvert_ImageToJPEG(t *testing.T) {
	out, err := New().Convert(context.Background(), Image, File{Name: "dot.png", Data: testPNG(t)}, "jpg", Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "converted-image.jpg", out.Name)
	assert.Equal(t, "image/jpeg", out.MIME)
	assert.True(t, out.Transcoded)

	_, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestConvert_ImageToWebPPassesThrough(t *testing.T) {
	src := testPNG(t)
	out, err := New().Convert(context.Background(), Image, File{Name: "dot.png", Data: src}, "webp", Options{}, nil)
	require.NoError(t, err)
	assert.False(t, out.Transcoded)
	assert.Equal(t, src, out.Data)
	assert.Equal(t, "image/webp", out.MIME)
}

func TestConvert_SVGPassesThrough(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	out, err := New().Convert(context.Background(), Image, File{Name: "logo.svg", Type: "image/svg+xml", Data: svg}, "png", Options{}, nil)
	require.NoError(t, err)
	assert.False(t, out.Transcoded)
	assert.Equal(t, svg, out.Data)
}

func TestConvert_PassThroughNames(t *testing.T) {
	tests := []struct {
		cat      Category
		file     File
		target   string
		wantName string
		wantMIME string
	}{
		{Audio, File{Name: "a.wav", Data: []byte("RIFF")}, "mp3", "converted-audio.mp3", "audio/mp3"},
		{Video, File{Name: "v.mov", Data: []byte{0}}, "webm", "converted-video.webm", "video/webm"},
		{Document, File{Name: "d.txt", Data: []byte("x")}, "pdf", "converted-document.pdf", "application/pdf"},
		{Archive, File{Name: "a.zip", Data: []byte("PK")}, "tar", "converted-archive.tar", "application/tar"},
		{PDF, File{Name: "f.pdf", Data: []byte("%PDF-")}, "docx", "converted-file.docx", "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			out, err := New().Convert(context.Background(), tt.cat, tt.file, tt.target, Options{}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, out.Name)
			assert.Equal(t, tt.wantMIME, out.MIME)
			assert.Equal(t, tt.file.Data, out.Data)
		})
	}
}

func TestConvert_Options(t *testing.T) {
	f := File{Name: "v.mp4", Data: []byte{0}}
	_, err := New().Convert(context.Background(), Video, f, "mp4", Options{Quality: 5}, nil)
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)

	_, err = New().Convert(context.Background(), Video, f, "mp4", Options{Resolution: "360p"}, nil)
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
}

func TestConvert_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var got []int
	_, err := New().Convert(ctx, Audio, File{Name: "a.mp3", Data: []byte{1}}, "wav", Options{}, func(p int) { got = append(got, p) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, got, 100)
}

func TestStartProgress(t *testing.T) {
	cv := &Converter{tick: time.Millisecond}
	var mu sync.Mutex
	var got []int
	stop := cv.startProgress(rules[Image], func(p int) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == 90
	}, time.Second, time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90}, got)
}

func TestStartProgress_VideoStep(t *testing.T) {
	cv := &Converter{tick: time.Millisecond}
	var mu sync.Mutex
	var got []int
	stop := cv.startProgress(rules[Video], func(p int) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 3
	}, time.Second, time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{10, 12, 14}, got[:3])
	for _, p := range got {
		assert.LessOrEqual(t, p, 90)
	}
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, "image/png", File{Data: testPNG(t)}.DetectType())
	assert.True(t, strings.HasPrefix(File{Data: []byte("hello")}.DetectType(), "text/plain"))
	assert.Equal(t, "audio/mpeg", File{Type: "audio/mpeg"}.DetectType())
}
