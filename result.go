package toolbox

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// Result holds an exported PDF together with what the export observed.
//
// Its methods may be called any number of times; the underlying data is
// never modified.
type Result struct {
	data     []byte
	pages    int
	filename string
	excluded []string
}

// NewResult wraps a PDF produced outside an [Exporter], for example one
// served from a cache.
func NewResult(data []byte, pages int, filename string) *Result {
	return &Result{data: data, pages: pages, filename: filename}
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content, suitable for
// uploads to object storage or any API that accepts an [io.Reader].
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Pages returns the number of pages in the document.
func (r *Result) Pages() int {
	return r.pages
}

// Filename returns the suggested download name.
func (r *Result) Filename() string {
	return r.filename
}

// Excluded lists the URLs of cross-origin images that were left out of
// the raster.
func (r *Result) Excluded() []string {
	return r.excluded
}
