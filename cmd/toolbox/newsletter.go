package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	toolbox "github.com/porticus-lab/go-toolbox"
	"github.com/porticus-lab/go-toolbox/internal/newsletter"
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Render and export newsletters",
}

var newsletterExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a newsletter as html or pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		d := newsletter.Default(now)
		in, _ := cmd.Flags().GetString("input")
		if in != "" {
			d = &newsletter.Data{}
		}
		if err := readYAML(in, d); err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("template")
		tmpl, err := newsletter.ParseTemplate(name)
		if err != nil {
			return err
		}
		html, err := newsletter.Render(d, tmpl, now.Year())
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "html":
			return save(cmd, newsletter.Filename(now, "html"), "text/html; charset=utf-8", []byte(html))
		case "pdf":
			e, err := newExporter()
			if err != nil {
				return err
			}
			defer e.Close()
			res, err := e.Export(cmd.Context(), toolbox.Source{
				HTML:     html,
				Selector: "#" + newsletter.Selector,
				Filename: newsletter.Filename(now, "pdf"),
			}, nil)
			if err != nil {
				return err
			}
			return save(cmd, res.Filename(), "application/pdf", res.Bytes())
		}
		return fmt.Errorf("unknown format %q: expected html or pdf", format)
	},
}

func init() {
	newsletterExportCmd.Flags().StringP("format", "f", "html", "output format: html or pdf")
	newsletterExportCmd.Flags().StringP("input", "i", "", "newsletter document (YAML or JSON)")
	newsletterExportCmd.Flags().StringP("output", "o", "", "output file or directory (default: Newsletter-<date>.<ext>)")
	newsletterExportCmd.Flags().String("template", "modern", "style: modern, classic, minimal or bold")

	newsletterCmd.AddCommand(newsletterExportCmd)
	rootCmd.AddCommand(newsletterCmd)
}
