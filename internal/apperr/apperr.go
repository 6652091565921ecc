// Package apperr holds the error taxonomy shared by every tool and the
// mapping from an error to the notification shown to the user.
package apperr

import (
	"errors"
	"strings"
)

// Sentinel errors. Every action failure wraps exactly one of these.
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidType      = errors.New("invalid file type")
	ErrElementNotFound  = errors.New("element not found")
	ErrExportFailed     = errors.New("export failed")
	ErrRequired         = errors.New("required value missing")
	ErrInvalidURL       = errors.New("invalid URL")
	ErrDraftNotFound    = errors.New("no saved draft was found")
	ErrTermsRequired    = errors.New("terms acknowledgment required")
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Variant is the visual style of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is the dismissible, user-facing description of an outcome.
type Notification struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
}

// Options tune Notify. Zero values fall back to "Error" and
// "An unexpected error occurred".
type Options struct {
	Title    string
	Fallback string
}

const (
	defaultTitle    = "Error"
	defaultFallback = "An unexpected error occurred"
)

// Notify turns err into a destructive notification. The error's own
// message is used when it has one, otherwise the fallback.
func Notify(err error, opts Options) Notification {
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	msg := opts.Fallback
	if msg == "" {
		msg = defaultFallback
	}
	if err != nil {
		if m := strings.TrimSpace(err.Error()); m != "" {
			msg = m
		}
	}
	return Notification{Title: title, Message: msg, Variant: VariantDestructive}
}

// Success builds a non-destructive notification.
func Success(title, message string) Notification {
	return Notification{Title: title, Message: message, Variant: VariantDefault}
}

// Kind returns the sentinel err wraps, or nil when it wraps none.
func Kind(err error) error {
	for _, s := range []error{
		ErrFileTooLarge, ErrInvalidType, ErrElementNotFound, ErrExportFailed,
		ErrRequired, ErrInvalidURL, ErrDraftNotFound, ErrTermsRequired,
		ErrUnsupportedValue,
	} {
		if errors.Is(err, s) {
			return s
		}
	}
	return nil
}

type userError struct {
	kind error
	msg  string
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

// New returns an error whose message is shown to the user verbatim and
// which matches kind under errors.Is.
func New(kind error, msg string) error {
	return &userError{kind: kind, msg: msg}
}
