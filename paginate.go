package toolbox

// Band is one page-height horizontal strip of a rasterized document,
// measured in raster pixels from the top of the image.
type Band struct {
	Top    int
	Height int
}

// Paginate slices contentHeight pixels of raster into bands of at most
// pageHeight pixels. Content no taller than one page yields exactly one
// band; the loop stops as soon as no content remains, so there is never a
// trailing empty band. Non-positive heights yield no bands.
func Paginate(contentHeight, pageHeight int) []Band {
	if contentHeight <= 0 || pageHeight <= 0 {
		return nil
	}
	bands := make([]Band, 0, (contentHeight+pageHeight-1)/pageHeight)
	for top := 0; top < contentHeight; top += pageHeight {
		bands = append(bands, Band{Top: top, Height: min(pageHeight, contentHeight-top)})
	}
	return bands
}

// bandPageHeight returns the raster height, in pixels, that fills one page
// when the raster's width is stretched to the page width.
func bandPageHeight(rasterWidth int, pageWidth, pageHeight float64) int {
	if rasterWidth <= 0 || pageWidth <= 0 {
		return 0
	}
	h := float64(rasterWidth) * pageHeight / pageWidth
	return int(h + 0.5)
}
