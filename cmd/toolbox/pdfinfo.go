package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-toolbox/internal/pdf"
)

var pdfinfoCmd = &cobra.Command{
	Use:   "pdfinfo <file.pdf>",
	Short: "Display a PDF's version, page count and page dimensions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageRange, _ := cmd.Flags().GetString("pages")
		return runInfo(cmd.OutOrStdout(), args[0], pageRange)
	},
}

func runInfo(w io.Writer, inputFile, pageRange string) error {
	doc, err := pdf.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputFile, err)
	}

	pages, err := doc.Pages()
	if err != nil {
		return fmt.Errorf("reading pages: %w", err)
	}
	indices, err := parsePageRange(pageRange, len(pages))
	if err != nil {
		return fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	fmt.Fprintf(w, "File:    %s\n", inputFile)
	fmt.Fprintf(w, "Version: PDF-%s\n", doc.Version())
	fmt.Fprintf(w, "Pages:   %d\n", len(pages))

	if len(indices) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(indices))
		for _, i := range indices {
			info := doc.Info(pages[i])
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				fmt.Sprintf("%.0f", info.Width),
				fmt.Sprintf("%.0f", info.Height),
				strconv.Itoa(info.Rotation),
			})
		}
		writeTable(w, []string{"Page", "Width (pt)", "Height (pt)", "Rotation"}, rows)
	}
	return nil
}

// parsePageRange converts a page range string to 0-based page indices.
// Supported forms: "" (all), "3", "1-5" and "1,3,5".
func parsePageRange(ranges string, total int) ([]int, error) {
	if ranges == "" {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	var indices []int
	seen := make(map[int]bool)
	add := func(p int) {
		if !seen[p] {
			indices = append(indices, p-1)
			seen[p] = true
		}
	}

	for _, part := range strings.Split(ranges, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", lo)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid page number: %s", hi)
			}
		}
		if start < 1 || end > total || start > end {
			if isRange {
				return nil, fmt.Errorf("page range %d-%d out of bounds (1-%d)", start, end, total)
			}
			return nil, fmt.Errorf("page %d out of bounds (1-%d)", start, total)
		}
		for p := start; p <= end; p++ {
			add(p)
		}
	}
	return indices, nil
}

func init() {
	pdfinfoCmd.Flags().StringP("pages", "p", "", `pages to list, e.g. "1", "1-5", "1,3,5" (default: all)`)
	rootCmd.AddCommand(pdfinfoCmd)
}
