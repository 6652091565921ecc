package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// File is an uploaded file.
type File struct {
	Name string
	// Type is the declared MIME type. It is sniffed from Data when empty.
	Type string
	Data []byte
}

// DetectType returns the declared type, or the sniffed one without
// parameters when none was declared.
func (f File) DetectType() string {
	if f.Type != "" {
		return f.Type
	}
	mt := mimetype.Detect(f.Data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

// Validate checks f against the category's size ceiling and allow-lists.
// The file passes when either its MIME type or its extension is allowed.
func (r Rules) Validate(f File) error {
	if f.Name == "" && len(f.Data) == 0 {
		return apperr.New(apperr.ErrRequired, "Please select a file to convert.")
	}
	if len(f.Data) > r.MaxSizeMB<<20 {
		return apperr.New(apperr.ErrFileTooLarge, fmt.Sprintf("File too large. Maximum size is %dMB.", r.MaxSizeMB))
	}
	if len(r.Types) == 0 || len(r.Extensions) == 0 {
		return nil
	}
	if r.typeAllowed(f.DetectType()) || r.extensionAllowed(f.Name) {
		return nil
	}
	return apperr.New(apperr.ErrInvalidType, r.supported())
}

func (r Rules) typeAllowed(mt string) bool {
	for _, t := range r.Types {
		if family, ok := strings.CutSuffix(t, "/*"); ok {
			if strings.HasPrefix(mt, family+"/") {
				return true
			}
			continue
		}
		if mt == t {
			return true
		}
	}
	return false
}

func (r Rules) extensionAllowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range r.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (r Rules) supported() string {
	exts := make([]string, len(r.Extensions))
	for i, e := range r.Extensions {
		exts[i] = strings.ToUpper(strings.TrimPrefix(e, "."))
	}
	return fmt.Sprintf("Invalid file format. Supported types: %s, formats: %s.",
		strings.Join(r.Types, ", "), strings.Join(exts, ", "))
}
