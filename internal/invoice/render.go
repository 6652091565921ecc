package invoice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Selector is the id of the element an export captures.
const Selector = "invoice-preview"

// Template is a page layout.
type Template string

const (
	Classic Template = "classic"
	Modern  Template = "modern"
	Minimal Template = "minimal"
)

// ColorScheme is the accent palette.
type ColorScheme string

const (
	Blue   ColorScheme = "blue"
	Green  ColorScheme = "green"
	Purple ColorScheme = "purple"
	Dark   ColorScheme = "dark"
)

// Paper names the export size.
type Paper string

const (
	A4     Paper = "A4"
	Letter Paper = "Letter"
)

var accents = map[ColorScheme]string{
	Blue:   "#3b82f6",
	Green:  "#22c55e",
	Purple: "#a855f7",
	Dark:   "#1f2937",
}

type style struct {
	Font    template.CSS
	Heading template.CSS
	Rule    template.CSS
}

var styles = map[Template]style{
	Classic: {Font: "Georgia, 'Times New Roman', serif", Heading: "#111827", Rule: "1px solid #e5e7eb"},
	Modern:  {Font: "'Helvetica Neue', Arial, sans-serif", Heading: "#ffffff", Rule: "1px solid #f3f4f6"},
	Minimal: {Font: "system-ui, sans-serif", Heading: "#111827", Rule: "none"},
}

// Options select how an invoice looks.
type Options struct {
	Template Template    `json:"template"`
	Color    ColorScheme `json:"color"`
	Paper    Paper       `json:"paper"`
}

// withDefaults fills empty fields and rejects unknown ones.
func (o Options) withDefaults() (Options, error) {
	if o.Template == "" {
		o.Template = Classic
	}
	if o.Color == "" {
		o.Color = Blue
	}
	if o.Paper == "" {
		o.Paper = A4
	}
	if _, ok := styles[o.Template]; !ok {
		return o, fmt.Errorf("%w: template %q", apperr.ErrUnsupportedValue, o.Template)
	}
	if _, ok := accents[o.Color]; !ok {
		return o, fmt.Errorf("%w: color scheme %q", apperr.ErrUnsupportedValue, o.Color)
	}
	if o.Paper != A4 && o.Paper != Letter {
		return o, fmt.Errorf("%w: paper %q", apperr.ErrUnsupportedValue, o.Paper)
	}
	return o, nil
}

//go:embed templates/invoice.html.tmpl
var templateFS embed.FS

var page = template.Must(template.New("invoice.html.tmpl").Funcs(template.FuncMap{
	"money":    func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"qty":      func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"longDate": longDate,
	"logo":     logoURL,
}).ParseFS(templateFS, "templates/invoice.html.tmpl"))

func longDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// logoURL admits inline images and web addresses as the logo source.
func logoURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return template.URL(s)
	}
	return ""
}

// Render returns the invoice as a standalone HTML document whose preview
// element has the id [Selector].
func Render(d *Data, opts Options) (string, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return "", err
	}
	width := 794
	if opts.Paper == Letter {
		width = 816
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, map[string]any{
		"Data":     d,
		"Totals":   d.Totals(),
		"Template": opts.Template,
		"Color":    opts.Color,
		"Accent":   template.CSS(accents[opts.Color]),
		"Style":    styles[opts.Template],
		"Selector": Selector,
		"WidthPx":  width,
	}); err != nil {
		return "", fmt.Errorf("rendering invoice: %w", err)
	}
	return buf.String(), nil
}
