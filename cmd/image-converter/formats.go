package main

import (
	"fmt"
	"os"
	"strings"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/formats"
	"image-converter-go/internal/tui"

	"github.com/spf13/cobra"
)

// formatsCmd lists the canonical formats and the spellings matched for each.
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([]tui.SummaryRow, 0, len(formats.All))
		for _, ext := range formats.All {
			value := "." + strings.Join(ext.Spellings(), ", .")
			if !codec.CanEncode(ext) {
				value += " (read only)"
			}
			rows = append(rows, tui.SummaryRow{Label: string(ext), Value: value})
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		return nil
	},
}
