package toolbox

import "math"

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A3     = PageSize{Width: 29.7, Height: 42.0}
	A4     = PageSize{Width: 21.0, Height: 29.7}
	A5     = PageSize{Width: 14.8, Height: 21.0}
	Letter = PageSize{Width: 21.59, Height: 27.94}
	Legal  = PageSize{Width: 21.59, Height: 35.56}
)

// PageSizeByName resolves "a4", "letter" and friends. Unknown names
// return false.
func PageSizeByName(name string) (PageSize, bool) {
	switch name {
	case "a3", "A3":
		return A3, true
	case "a4", "A4", "":
		return A4, true
	case "a5", "A5":
		return A5, true
	case "letter", "Letter", "US Letter":
		return Letter, true
	case "legal", "Legal":
		return Legal, true
	}
	return PageSize{}, false
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Mode selects how the document becomes a PDF.
type Mode int

const (
	// Raster snapshots the element into one tall image and slices it into
	// page-height bands, one band per PDF page.
	Raster Mode = iota
	// Print uses the browser's own print engine and keeps text as vectors.
	Print
)

// Margin represents page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// PageConfig controls the PDF output parameters.
//
// A nil PageConfig or zero-value fields will use sensible defaults:
// A4 paper, portrait orientation, 1 cm margins, scale 1.0, raster mode.
// Margins apply to print mode; raster bands fill the page edge to edge.
type PageConfig struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Mode picks raster bands or native print. Defaults to Raster.
	Mode Mode

	// Margin specifies print margins in centimeters. Defaults to 1 cm on all sides.
	Margin Margin

	// Scale of the webpage rendering in print mode. Must be between 0.1
	// and 2.0. Defaults to 1.0.
	Scale float64

	// PrintBackground enables printing of background colors and images
	// in print mode.
	PrintBackground bool

	// DisplayHeaderFooter enables the header and footer templates in
	// print mode.
	DisplayHeaderFooter bool

	// HeaderTemplate is an HTML template for the print header.
	HeaderTemplate string

	// FooterTemplate is an HTML template for the print footer.
	FooterTemplate string
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:            A4,
		Orientation:     Portrait,
		Mode:            Raster,
		Margin:          UniformMargin(1.0),
		Scale:           1.0,
		PrintBackground: true,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

// cssDPI is the CSS reference resolution: 1in = 96px.
const cssDPI = 96.0

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// cmToPixels converts centimeters to CSS pixels, rounded.
func cmToPixels(cm float64) int64 {
	return int64(math.Round(cmToInches(cm) * cssDPI))
}

// paperDimensions returns the paper width and height in centimeters,
// accounting for orientation.
func (p *PageConfig) paperDimensions() (width, height float64) {
	r := p.resolved()
	if r.Orientation == Landscape {
		return r.Size.Height, r.Size.Width
	}
	return r.Size.Width, r.Size.Height
}

// paperInches returns the paper width and height in inches.
func (p *PageConfig) paperInches() (width, height float64) {
	w, h := p.paperDimensions()
	return cmToInches(w), cmToInches(h)
}

// viewport returns the paper size in CSS pixels. A4 portrait is 794x1123.
func (p *PageConfig) viewport() (width, height int64) {
	w, h := p.paperDimensions()
	return cmToPixels(w), cmToPixels(h)
}

// marginInches returns margins converted to inches.
func (p *PageConfig) marginInches() (top, right, bottom, left float64) {
	r := p.resolved()
	return cmToInches(r.Margin.Top),
		cmToInches(r.Margin.Right),
		cmToInches(r.Margin.Bottom),
		cmToInches(r.Margin.Left)
}
