package toolbox

import (
	"errors"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Exporter].
	ErrClosed = errors.New("toolbox: exporter is closed")

	// ErrElementNotFound is returned when the export selector matches nothing.
	ErrElementNotFound = apperr.ErrElementNotFound

	// ErrExportFailed wraps every rasterization, browser or PDF failure.
	ErrExportFailed = apperr.ErrExportFailed
)
