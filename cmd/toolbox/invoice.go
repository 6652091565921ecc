package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	toolbox "github.com/porticus-lab/go-toolbox"
	"github.com/porticus-lab/go-toolbox/internal/draft"
	"github.com/porticus-lab/go-toolbox/internal/invoice"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Render and export invoices",
}

var invoiceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an invoice as pdf, xlsx, docx or html",
	Long: `Export reads an invoice document (YAML or JSON, see --input) and writes it in
the requested format. Without --input the starter invoice is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, opts, err := invoiceInput(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		switch format {
		case "pdf":
			html, err := invoice.Render(d, opts)
			if err != nil {
				return err
			}
			e, err := newExporter()
			if err != nil {
				return err
			}
			defer e.Close()
			size := toolbox.A4
			if opts.Paper == invoice.Letter {
				size = toolbox.Letter
			}
			res, err := e.Export(cmd.Context(), toolbox.Source{
				HTML:     html,
				Selector: "#" + invoice.Selector,
				Filename: d.Filename("pdf"),
			}, &toolbox.PageConfig{Size: size})
			if err != nil {
				return err
			}
			for _, u := range res.Excluded() {
				logger.Warn().Str("url", u).Msg("cross-origin image left out of the PDF")
			}
			return save(cmd, res.Filename(), "application/pdf", res.Bytes())
		case "xlsx":
			b, err := invoice.XLSX(d)
			if err != nil {
				return err
			}
			return save(cmd, d.Filename("xlsx"), invoice.MIMEXLSX, b)
		case "docx":
			b, err := invoice.Word(d, opts)
			if err != nil {
				return err
			}
			return save(cmd, d.Filename("docx"), invoice.MIMEDOCX, b)
		case "html":
			html, err := invoice.Render(d, opts)
			if err != nil {
				return err
			}
			return save(cmd, d.Filename("html"), invoice.MIMEHTML, []byte(html))
		}
		return fmt.Errorf("unknown format %q: expected pdf, xlsx, docx or html", format)
	},
}

var invoiceDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Save or load the invoice draft",
}

var invoiceDraftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save an invoice document as the current draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := invoiceInput(cmd)
		if err != nil {
			return err
		}
		return withDrafts(cmd.Context(), func(s draft.Store) error {
			if err := s.Save(cmd.Context(), draft.InvoiceKey, d); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Your invoice has been saved as a draft.")
			return nil
		})
	},
}

var invoiceDraftLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Print the saved invoice draft as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDrafts(cmd.Context(), func(s draft.Store) error {
			d, err := s.Load(cmd.Context(), draft.InvoiceKey)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		})
	},
}

// invoiceInput reads --input over the starter invoice and the style flags.
func invoiceInput(cmd *cobra.Command) (*invoice.Data, invoice.Options, error) {
	d := invoice.Default(time.Now())
	in, _ := cmd.Flags().GetString("input")
	if in != "" {
		d = &invoice.Data{}
	}
	if err := readYAML(in, d); err != nil {
		return nil, invoice.Options{}, err
	}
	d.Recalculate()
	if err := d.Validate(); err != nil {
		return nil, invoice.Options{}, err
	}

	var opts invoice.Options
	if cmd.Flags().Lookup("template") != nil {
		t, _ := cmd.Flags().GetString("template")
		c, _ := cmd.Flags().GetString("color")
		p, _ := cmd.Flags().GetString("paper")
		opts = invoice.Options{Template: invoice.Template(t), Color: invoice.ColorScheme(c), Paper: invoice.Paper(p)}
	}
	return d, opts, nil
}

func withDrafts(ctx context.Context, fn func(draft.Store) error) error {
	s, err := draft.Open(ctx, cfg.Drafts.Driver, cfg.Drafts.DSN)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func init() {
	invoiceExportCmd.Flags().StringP("format", "f", "pdf", "output format: pdf, xlsx, docx or html")
	invoiceExportCmd.Flags().StringP("input", "i", "", "invoice document (YAML or JSON)")
	invoiceExportCmd.Flags().StringP("output", "o", "", "output file or directory (default: Invoice-<number>.<ext>)")
	invoiceExportCmd.Flags().String("template", "classic", "layout: classic, modern or minimal")
	invoiceExportCmd.Flags().String("color", "blue", "colour scheme: blue, green, purple or dark")
	invoiceExportCmd.Flags().String("paper", "A4", "paper size: A4 or Letter")

	invoiceDraftSaveCmd.Flags().StringP("input", "i", "", "invoice document (YAML or JSON)")

	invoiceDraftCmd.AddCommand(invoiceDraftSaveCmd, invoiceDraftLoadCmd)
	invoiceCmd.AddCommand(invoiceExportCmd, invoiceDraftCmd)
	rootCmd.AddCommand(invoiceCmd)
}
