package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-toolbox/internal/shortener"
)

var shortenCmd = &cobra.Command{
	Use:   "shorten <url>",
	Short: "Create a short link and show its click statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		custom, _ := cmd.Flags().GetString("custom")
		noTrack, _ := cmd.Flags().GetBool("no-tracking")
		expires, _ := cmd.Flags().GetDuration("expires")
		period, _ := cmd.Flags().GetString("stats")

		req := shortener.Request{
			URL:        args[0],
			CustomPath: custom,
			UseCustom:  custom != "",
			Tracking:   !noTrack,
		}
		if expires > 0 {
			at := time.Now().Add(expires)
			req.ExpiresAt = &at
		}

		svc := shortener.New()
		link, err := svc.Shorten(cmd.Context(), req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, link.URL())

		if period == "" || !link.Tracking {
			return nil
		}
		st, err := svc.Stats(shortener.Period(period))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nTotal clicks: %d   Unique visitors: %d\n\n", st.TotalClicks, st.UniqueVisitors)
		writeTable(out, []string{"Device", "Share"}, shareRows(st.Devices, "%"))
		fmt.Fprintln(out)
		writeTable(out, []string{"Country", "Clicks"}, shareRows(st.Locations, ""))
		fmt.Fprintln(out)
		writeTable(out, []string{"Referrer", "Clicks"}, shareRows(st.Referrers, ""))
		return nil
	},
}

func shareRows(shares []shortener.Share, suffix string) [][]string {
	rows := make([][]string, len(shares))
	for i, s := range shares {
		rows[i] = []string{s.Name, strconv.Itoa(s.Value) + suffix}
	}
	return rows
}

// writeTable prints an aligned plain-text table. Column widths are measured
// in terminal cells so wide characters line up.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := range header {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(header))
		for i := range header {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(header)
	sep := make([]string, len(header))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

func init() {
	shortenCmd.Flags().String("custom", "", "custom path instead of a random code")
	shortenCmd.Flags().Bool("no-tracking", false, "disable click tracking")
	shortenCmd.Flags().Duration("expires", 0, "expire the link after this duration")
	shortenCmd.Flags().String("stats", "", "print statistics for a period: 7d, 30d or 90d")

	rootCmd.AddCommand(shortenCmd)
}
