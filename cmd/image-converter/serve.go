package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/config"
	"image-converter-go/internal/engine"
	"image-converter-go/internal/inspect"
	"image-converter-go/internal/statistics"
	"image-converter-go/internal/web"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	host string
	port int
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts an HTTP server exposing the converter as a JSON API:
- set source and output folders, formats and scale
- start and cancel discovery and conversion
- follow progress over a WebSocket at /ws
- list targets and inspect single files`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "interface to listen on (default from config)")
	serveCmd.Flags().IntVar(&port, "port", 0, "port to run web server on (default from config)")
}

// runServe starts the web server and handles graceful shutdown.
func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config load error, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if host != "" {
		cfg.Web.Host = host
	}
	if port != 0 {
		cfg.Web.Port = port
	}

	log := setupLogger(cfg, true)
	fs := afero.NewOsFs()
	eng := engine.New(fs, codec.NewImaging(fs), log, statistics.NewStatistics(), engine.Options{
		ProgressEvery:    cfg.Progress.Every,
		ProgressInterval: cfg.Progress.Interval,
	})

	// Configured folders are a convenience; a bad one is reported and left unset.
	if cfg.SourceDirectory != "" {
		if err := eng.SetSourcePath(cfg.SourceDirectory); err != nil {
			log.Warnf("Ignoring source_directory: %v", err)
		}
	}
	if cfg.OutputDirectory != "" {
		if err := eng.SetOutputPath(cfg.OutputDirectory); err != nil {
			log.Warnf("Ignoring output_directory: %v", err)
		}
	}
	eng.SetSourceFilter(cfg.SourceFilter())
	eng.SetOutputFilter(cfg.OutputFilter())
	if err := eng.SetScale(cfg.ScalePercent); err != nil {
		return err
	}

	server := web.NewServer(eng, inspect.NewInspector(fs, log), log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Web.Host, cfg.Web.Port); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	fmt.Printf("Image converter API listening on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Printf("Press Ctrl+C to stop the server\n\n")

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed to start: %w", err)
	case <-sigChan:
	}
	fmt.Println("\nShutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	fmt.Println("Server stopped gracefully")
	return nil
}
