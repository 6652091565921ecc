package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-toolbox/internal/invoice"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		ranges  string
		total   int
		want    []int
		wantErr bool
	}{
		{"", 3, []int{0, 1, 2}, false},
		{"2", 3, []int{1}, false},
		{"1-3", 5, []int{0, 1, 2}, false},
		{"1,3,1", 3, []int{0, 2}, false},
		{"2-3, 1", 3, []int{1, 2, 0}, false},
		{"4", 3, nil, true},
		{"3-2", 3, nil, true},
		{"x", 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.ranges, func(t *testing.T) {
			got, err := parsePageRange(tt.ranges, tt.total)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"Country", "Clicks"}, [][]string{
		{"United States", "120"},
		{"日本", "7"},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Country        Clicks", lines[0])
	assert.Equal(t, "-------------  ------", lines[1])
	assert.Equal(t, "United States  120", lines[2])
	// Two wide runes take four cells.
	assert.Equal(t, "日本           7", lines[3])
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "a.pdf", outputPath("", "a.pdf"))
	assert.Equal(t, filepath.Join(dir, "a.pdf"), outputPath(dir, "a.pdf"))
	assert.Equal(t, filepath.Join(dir, "b.pdf"), outputPath(filepath.Join(dir, "b.pdf"), "a.pdf"))
}

func TestReadYAML_Invoice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
invoiceNumber: INV-042
invoiceDate: 2024-05-01T00:00:00Z
clientName: Acme
taxRate: 10
items:
  - description: Consulting
    quantity: 2
    rate: 500
`), 0o644))

	var d invoice.Data
	require.NoError(t, readYAML(path, &d))
	d.Recalculate()
	assert.Equal(t, "INV-042", d.InvoiceNumber)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), d.InvoiceDate)
	assert.InDelta(t, 1100, d.Totals().Total, 0.001)

	assert.NoError(t, readYAML("", &d))
	assert.Error(t, readYAML(filepath.Join(t.TempDir(), "missing.yaml"), &d))
}

func TestRunInfo(t *testing.T) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.AddPageFormat("L", gofpdf.SizeType{Wd: 215.9, Ht: 279.4})
	path := filepath.Join(t.TempDir(), "two.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))

	var buf bytes.Buffer
	require.NoError(t, runInfo(&buf, path, ""))
	out := buf.String()
	assert.Contains(t, out, "Pages:   2")
	assert.Contains(t, out, "Page  Width (pt)  Height (pt)  Rotation")
	assert.Regexp(t, `(?m)^1\s+595\s+842\s+0$`, out)
	assert.Regexp(t, `(?m)^2\s+\d+\s+\d+\s+0$`, out)

	buf.Reset()
	require.NoError(t, runInfo(&buf, path, "2"))
	assert.NotRegexp(t, `(?m)^1\s+595`, buf.String())
	assert.Regexp(t, `(?m)^2\s+\d+`, buf.String())

	assert.Error(t, runInfo(&buf, path, "3"))
}
