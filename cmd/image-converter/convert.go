package main

import (
	"fmt"
	"os"

	"image-converter-go/internal/engine"
	"image-converter-go/internal/statistics"
	"image-converter-go/internal/tui"

	"github.com/spf13/cobra"
)

// runConvert executes discovery followed by conversion.
func runConvert(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	interactive := useInteractive()
	log := setupLogger(cfg, !interactive)
	stats := statistics.NewStatistics()

	eng, err := newEngine(cfg, log, stats, true)
	if err != nil {
		return err
	}
	if !eng.OutputFilter().Any() {
		log.Warn("No output formats selected, nothing will be written")
	}

	cancel := func() {
		eng.RequestCancelDiscovery()
		eng.RequestCancelConversion()
	}
	stopSignals := watchSignals(cancel)
	defer stopSignals()

	reporter := newProgressReporter(interactive, cancel)
	found, err := eng.Discover(reporter.Discovery)
	if err != nil {
		reporter.Close()
		return fmt.Errorf("discovery failed: %w", err)
	}
	if found.Canceled {
		reporter.Close()
		fmt.Fprintln(os.Stderr, "File search canceled")
		return nil
	}

	result, err := eng.ConvertAll(reporter.Conversion)
	reporter.Close()
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if !quiet {
		printConversionSummary(eng, found, result, stats)
	}
	return nil
}

func printConversionSummary(eng *engine.Engine, found engine.DiscoveryResult, result engine.ConversionResult, stats *statistics.Statistics) {
	snap := stats.Snapshot()
	status := "completed"
	if result.Canceled {
		status = "canceled"
	}

	rows := []tui.SummaryRow{
		{Label: "Status", Value: status},
		{Label: "Images found", Value: fmt.Sprintf("%d", found.Targets.Len())},
		{Label: "Images handled", Value: fmt.Sprintf("%d", result.Handled)},
		{Label: "Outputs written", Value: fmt.Sprintf("%d", snap.OutputsWritten)},
		{Label: "Files with errors", Value: fmt.Sprintf("%d", len(result.ErroredKeys))},
		{Label: "Output formats", Value: eng.OutputFilter().String()},
		{Label: "Scale", Value: fmt.Sprintf("%d%%", eng.ScalePercent())},
		{Label: "Duration", Value: snap.Duration},
		{Label: "Conversion log", Value: result.LogPath},
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

	if verbose {
		fmt.Fprintln(os.Stdout, "\n"+stats.GetFormatBreakdown())
	}
	if len(result.ErroredKeys) > 0 {
		fmt.Fprintln(os.Stdout, "\n"+stats.GetErrorSummary())
	}
}
