// Package toolbox turns rendered HTML documents, such as invoices and
// newsletters, into paginated PDF files using headless Chrome.
//
// # Raster export
//
// The default pipeline opens the document in a fresh tab sized to the page
// width (A4 is 794 CSS px), waits for images, captures the selected
// element at a fixed device scale and slices the capture into page-height
// bands, one band per PDF page:
//
//	e, err := toolbox.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
//	res, err := e.Export(ctx, toolbox.Source{
//	    HTML:     html,
//	    Selector: "#invoice-preview",
//	    Filename: "Invoice-INV-001.pdf",
//	}, nil)
//
// Cross-origin images loaded without CORS are removed before capture and
// listed by [Result.Excluded], unless [WithAllowTaint] is set.
//
// # Print export
//
// Set [PageConfig.Mode] to [Print] to use Chrome's own print engine, which
// keeps text selectable:
//
//	page := &toolbox.PageConfig{
//	    Size:   toolbox.Letter,
//	    Mode:   toolbox.Print,
//	    Margin: toolbox.UniformMargin(2.0),
//	}
//	res, err := e.Export(ctx, toolbox.Source{HTML: html}, page)
//
// A [Result] gives access to the generated bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//	res.Pages()                       // page count
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload].
package toolbox
