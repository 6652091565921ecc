package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
	"github.com/porticus-lab/go-toolbox/internal/convert"
)

// readUpload reads the multipart "file" field.
func readUpload(r *http.Request) (convert.File, error) {
	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return convert.File{}, apperr.New(apperr.ErrRequired, "Please select a file to convert.")
	}
	if err != nil {
		return convert.File{}, fmt.Errorf("%w: reading upload: %v", apperr.ErrUnsupportedValue, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return convert.File{}, fmt.Errorf("reading upload: %w", err)
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "application/octet-stream" {
		ct = ""
	}
	return convert.File{Name: hdr.Filename, Type: ct, Data: data}, nil
}
