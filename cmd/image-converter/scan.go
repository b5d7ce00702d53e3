package main

import (
	"fmt"
	"os"
	"path/filepath"

	"image-converter-go/internal/engine"
	"image-converter-go/internal/statistics"
	"image-converter-go/internal/tui"

	"github.com/spf13/cobra"
)

// scanCmd lists the images a conversion would pick up without converting them.
var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "List matching images without converting them",
	Long: `Search the given folder (or --source) for images matching the selected
source formats and print each one with its path. Nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args)
	},
}

// runScan discovers targets and prints the listing.
func runScan(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		sourceDir = args[0]
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.OutputDirectory = ""

	log := setupLogger(cfg, !quiet)
	eng, err := newEngine(cfg, log, statistics.NewStatistics(), false)
	if err != nil {
		return err
	}

	stopSignals := watchSignals(eng.RequestCancelDiscovery)
	defer stopSignals()

	fmt.Fprintf(os.Stderr, "Scanning folder: %s\n", eng.SourcePath())
	result, err := eng.Discover(nil)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if result.Canceled {
		fmt.Fprintln(os.Stderr, "File search canceled")
		return nil
	}

	fmt.Fprintln(os.Stdout, tui.RenderTargets(targetRows(result.Targets)))
	fmt.Fprintf(os.Stdout, "\nFinished with %d images found, %d files with errors (%d files scanned)\n",
		result.Targets.Len(), len(result.ErroredKeys), result.Scanned)
	return nil
}

func targetRows(targets *engine.TargetSet) []tui.TargetRow {
	rows := make([]tui.TargetRow, 0, targets.Len())
	targets.Each(func(path string, entry *engine.TargetEntry) {
		row := tui.TargetRow{Name: filepath.Base(path), Path: path}
		if entry.HasErrors() {
			row.Info = string(entry.Errors[0].Kind)
		}
		rows = append(rows, row)
	})
	return rows
}
