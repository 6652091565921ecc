package invoice

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/xuri/excelize/v2"
)

// MIME types of the invoice downloads.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEHTML = "text/html; charset=utf-8"
)

const sheetName = "Invoice"

// rows lays the invoice out as spreadsheet rows: header block, item
// table, totals and payment details.
func rows(d *Data) [][]any {
	date := ""
	if !d.InvoiceDate.IsZero() {
		date = d.InvoiceDate.Format("1/2/2006")
	}
	out := [][]any{
		{"Invoice", d.InvoiceNumber},
		{"Date", date},
		{""},
		{"From", d.YourName},
		{"", d.YourAddress},
		{"", d.YourEmail},
		{"", d.YourPhone},
		{""},
		{"Bill To", d.ClientName},
		{"", d.ClientAddress},
		{"", d.ClientEmail},
		{"", d.ClientPhone},
		{""},
		{"Description", "Details", "Quantity", "Rate", "Amount"},
	}
	for _, it := range d.Items {
		out = append(out, []any{it.Description, it.Details, it.Quantity, it.Rate, it.Amount})
	}
	t := d.Totals()
	out = append(out,
		[]any{""},
		[]any{"", "", "", "Subtotal", t.Subtotal},
		[]any{"", "", "", fmt.Sprintf("Tax (%v%%)", d.TaxRate), t.Tax},
		[]any{"", "", "", "Total", t.Total},
		[]any{""},
		[]any{"Payment Terms", d.PaymentTerms},
		[]any{"Payment Method", d.PaymentMethod},
		[]any{"Bank Details", d.BankDetails},
	)
	return out
}

// XLSX returns the invoice as a single-sheet workbook.
func XLSX(d *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	for i, row := range rows(d) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "B", 24); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var previewElement = regexp.MustCompile(`(?s)<div id="` + Selector + `".*</div>`)

// Word returns the rendered preview element as HTML, to be saved with the
// .docx extension and [MIMEDOCX]. It is not an OOXML package; word
// processors open it through their HTML import.
func Word(d *Data, opts Options) ([]byte, error) {
	html, err := Render(d, opts)
	if err != nil {
		return nil, err
	}
	if m := previewElement.FindString(html); m != "" {
		return []byte(m), nil
	}
	return []byte(html), nil
}
