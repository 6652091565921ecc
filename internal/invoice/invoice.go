// Package invoice models invoices and renders them as HTML, XLSX and
// Word documents.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// LineItem is one billed row. Amount is always Quantity × Rate.
type LineItem struct {
	Description string  `json:"description" yaml:"description"`
	Details     string  `json:"details" yaml:"details"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Rate        float64 `json:"rate" yaml:"rate"`
	Amount      float64 `json:"amount" yaml:"amount"`
}

// Data is everything printed on an invoice.
type Data struct {
	InvoiceNumber string     `json:"invoiceNumber" yaml:"invoiceNumber"`
	InvoiceDate   time.Time  `json:"invoiceDate" yaml:"invoiceDate"`
	YourName      string     `json:"yourName" yaml:"yourName"`
	YourAddress   string     `json:"yourAddress" yaml:"yourAddress"`
	YourEmail     string     `json:"yourEmail" yaml:"yourEmail"`
	YourPhone     string     `json:"yourPhone" yaml:"yourPhone"`
	ClientName    string     `json:"clientName" yaml:"clientName"`
	ClientAddress string     `json:"clientAddress" yaml:"clientAddress"`
	ClientEmail   string     `json:"clientEmail" yaml:"clientEmail"`
	ClientPhone   string     `json:"clientPhone" yaml:"clientPhone"`
	PaymentTerms  string     `json:"paymentTerms" yaml:"paymentTerms"`
	PaymentMethod string     `json:"paymentMethod" yaml:"paymentMethod"`
	BankDetails   string     `json:"bankDetails" yaml:"bankDetails"`
	Items         []LineItem `json:"items" yaml:"items"`
	TaxRate       float64    `json:"taxRate" yaml:"taxRate"`
	Notes         string     `json:"notes" yaml:"notes"`
	Logo          string     `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Totals are derived from the line items and the tax rate.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Default returns the starter invoice dated now.
func Default(now time.Time) *Data {
	return &Data{
		InvoiceNumber: "INV-001",
		InvoiceDate:   now,
		YourName:      "Your Business Name",
		YourAddress:   "123 Business St, City, Country",
		YourEmail:     "your@email.com",
		YourPhone:     "+1 (555) 123-4567",
		ClientName:    "Client Business Name",
		ClientAddress: "456 Client St, City, Country",
		ClientEmail:   "client@email.com",
		ClientPhone:   "+1 (555) 987-6543",
		PaymentTerms:  "Due within 30 days",
		PaymentMethod: "Bank Transfer",
		BankDetails:   "Bank: Example Bank\nAccount Name: Your Name\nAccount Number: 123456789\nSort Code: 12-34-56",
		Items: []LineItem{
			{Description: "Website Design", Details: "Design and development of company website", Quantity: 1, Rate: 1200, Amount: 1200},
			{Description: "Logo Design", Details: "Company logo design", Quantity: 1, Rate: 400, Amount: 400},
		},
		TaxRate: 10,
		Notes:   "Thank you for your business!",
	}
}

// Recalculate sets every item's Amount from its quantity and rate.
func (d *Data) Recalculate() {
	for i := range d.Items {
		d.Items[i].Amount = d.Items[i].Quantity * d.Items[i].Rate
	}
}

// Totals sums the item amounts and applies the tax rate.
func (d *Data) Totals() Totals {
	var t Totals
	for _, it := range d.Items {
		t.Subtotal += it.Amount
	}
	t.Tax = t.Subtotal * d.TaxRate / 100
	t.Total = t.Subtotal + t.Tax
	return t
}

// DueDate is the invoice date plus 30 days. A zero invoice date has no
// due date.
func (d *Data) DueDate() time.Time {
	if d.InvoiceDate.IsZero() {
		return time.Time{}
	}
	return d.InvoiceDate.AddDate(0, 0, 30)
}

// Filename returns "Invoice-<number>.<ext>".
func (d *Data) Filename(ext string) string {
	return fmt.Sprintf("Invoice-%s.%s", d.InvoiceNumber, ext)
}

// Validate checks the fields an export cannot do without.
func (d *Data) Validate() error {
	if strings.TrimSpace(d.InvoiceNumber) == "" {
		return fmt.Errorf("%w: invoice number", apperr.ErrRequired)
	}
	for i, it := range d.Items {
		if it.Quantity < 0 || it.Rate < 0 {
			return fmt.Errorf("%w: item %d has a negative quantity or rate", apperr.ErrUnsupportedValue, i+1)
		}
	}
	if d.TaxRate < 0 {
		return fmt.Errorf("%w: tax rate %v", apperr.ErrUnsupportedValue, d.TaxRate)
	}
	return nil
}
