package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-toolbox/internal/youtube"
)

var youtubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Analyze, transcribe and download YouTube videos",
}

var youtubeInfoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show a video's title, channel and available formats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := youtube.New(youtube.DefaultDelays).Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		fmt.Fprintf(out, "%s\nChannel:  %s\nDuration: %s\n\n", info.Title, info.Author, info.Duration)
		rows := make([][]string, len(info.Formats))
		for i, f := range info.Formats {
			rows[i] = []string{f.Key(), f.Size}
		}
		writeTable(out, []string{"Format", "Size"}, rows)
		return nil
	},
}

var youtubeTranscriptCmd = &cobra.Command{
	Use:   "transcript <url>",
	Short: "Generate a video transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		plain, _ := cmd.Flags().GetBool("plain")
		tr, err := youtube.New(youtube.DefaultDelays).Transcript(cmd.Context(), args[0], lang)
		if err != nil {
			return err
		}
		text := tr.Text
		if plain {
			text = tr.Plain()
		}
		if out, _ := cmd.Flags().GetString("output"); out != "" {
			return save(cmd, youtube.TranscriptFilename, "text/plain; charset=utf-8", []byte(text))
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

var youtubeDownloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a video or its audio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		accepted, _ := cmd.Flags().GetBool("accept-terms")

		svc := youtube.New(youtube.DefaultDelays)
		info, err := svc.Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		errOut := cmd.ErrOrStderr()
		dl, err := svc.Download(cmd.Context(), info, format, accepted, func(p int) {
			fmt.Fprintf(errOut, "\rDownloading... %3d%%", p)
		})
		fmt.Fprintln(errOut)
		if err != nil {
			return err
		}
		return save(cmd, dl.Name, dl.MIME, dl.Data)
	},
}

func init() {
	youtubeInfoCmd.Flags().Bool("json", false, "print as JSON")

	youtubeTranscriptCmd.Flags().String("lang", "en", "transcript language code")
	youtubeTranscriptCmd.Flags().Bool("plain", false, "omit timestamps")
	youtubeTranscriptCmd.Flags().StringP("output", "o", "", "write to a file or directory instead of stdout")

	youtubeDownloadCmd.Flags().StringP("format", "f", "720p-mp4", `format key from "youtube info", e.g. 720p-mp4`)
	youtubeDownloadCmd.Flags().Bool("accept-terms", false, "confirm you have the right to download this content")
	youtubeDownloadCmd.Flags().StringP("output", "o", "", "output file or directory")

	youtubeCmd.AddCommand(youtubeInfoCmd, youtubeTranscriptCmd, youtubeDownloadCmd)
	rootCmd.AddCommand(youtubeCmd)
}
