package main

import (
	"fmt"
	"os"

	"image-converter-go/internal/inspect"
	"image-converter-go/internal/logger"
	"image-converter-go/internal/tui"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var inspectScale int

// inspectCmd probes a single file.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show format, size and EXIF metadata of one image",
	Long: `Reads the header and EXIF block of a single image and shows the size it
would be written at with --scale. Useful for checking a file before converting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectScale, "scale", 100, "scale in percent used for the output size")
}

// runInspect prints the report for filePath.
func runInspect(filePath string) error {
	log := logger.Discard()
	if verbose {
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.DebugLevel)
	}

	report, err := inspect.NewInspector(afero.NewOsFs(), log).Inspect(filePath, inspectScale)
	if err != nil {
		return fmt.Errorf("cannot inspect %s: %w", filePath, err)
	}

	rows := []tui.SummaryRow{
		{Label: "File", Value: report.Path},
		{Label: "Decoder", Value: report.Decoder},
		{Label: "Size", Value: fmt.Sprintf("%dx%d", report.Width, report.Height)},
		{Label: fmt.Sprintf("At %d%%", report.ScalePercent), Value: fmt.Sprintf("%dx%d", report.ScaledWidth, report.ScaledHeight)},
		{Label: "Bytes", Value: fmt.Sprintf("%d", report.Size)},
	}
	if report.Extension == "" {
		rows = append(rows, tui.SummaryRow{Label: "Extension", Value: "not matched by any format"})
	}
	if meta := report.EXIF; meta != nil {
		if meta.Date != nil {
			rows = append(rows, tui.SummaryRow{Label: "Date", Value: meta.Date.Format("2006-01-02 15:04:05") + " (" + meta.DateSource.String() + ")"})
		}
		if meta.Make != "" || meta.Model != "" {
			rows = append(rows, tui.SummaryRow{Label: "Camera", Value: meta.Make + " " + meta.Model})
		}
		if meta.Orientation != 0 {
			rows = append(rows, tui.SummaryRow{Label: "Orientation", Value: fmt.Sprintf("%d", meta.Orientation)})
		}
	} else {
		rows = append(rows, tui.SummaryRow{Label: "EXIF", Value: "none"})
	}

	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
	return nil
}
