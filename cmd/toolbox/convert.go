package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-toolbox/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a file to another format",
	Long: `Convert validates a file against the category's allowed types and size
limit and writes it in the target format. Images are re-encoded to png, jpg
or gif; other categories keep the original bytes under the new name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		format, _ := cmd.Flags().GetString("format")
		quality, _ := cmd.Flags().GetInt("quality")
		resolution, _ := cmd.Flags().GetString("resolution")
		quiet, _ := cmd.Flags().GetBool("quiet")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		file := convert.File{Name: filepath.Base(args[0]), Data: data}

		var progress convert.ProgressFunc
		if !quiet {
			errOut := cmd.ErrOrStderr()
			progress = func(p int) { fmt.Fprintf(errOut, "\rConverting... %3d%%", p) }
		}
		out, err := convert.New().Convert(cmd.Context(), convert.Category(category), file, format,
			convert.Options{Quality: quality, Resolution: resolution, Logger: &logger}, progress)
		if !quiet {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
		if err != nil {
			return err
		}
		if !out.Transcoded {
			logger.Warn().Str("output", out.Name).Msg("format not transcoded; output holds the original bytes")
		}
		return save(cmd, out.Name, out.MIME, out.Data)
	},
}

func init() {
	convertCmd.Flags().StringP("category", "c", "image", "file category: image, audio, video, document, archive or pdf")
	convertCmd.Flags().StringP("format", "f", "", "target format (default: the category's first format)")
	convertCmd.Flags().IntP("quality", "q", convert.DefaultQuality, "output quality, 10 to 100")
	convertCmd.Flags().String("resolution", "720p", "video resolution: 480p, 720p, 1080p, 1440p or 2160p")
	convertCmd.Flags().StringP("output", "o", "", "output file or directory")
	convertCmd.Flags().Bool("quiet", false, "do not print progress")

	rootCmd.AddCommand(convertCmd)
}
