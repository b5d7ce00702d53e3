package main

import (
	"fmt"
	"os"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/config"
	"image-converter-go/internal/engine"
	"image-converter-go/internal/logger"
	"image-converter-go/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	sourceDir string
	outputDir string
	fromExts  []string
	toExts    []string
	scale     int
	verbose   bool
	quiet     bool
	plain     bool
	version   = "dev"
)

// rootCmd converts every matching image below the source folder.
var rootCmd = &cobra.Command{
	Use:   "image-converter",
	Short: "Batch-convert and rescale images between formats",
	Long: `image-converter walks a source folder, collects every image whose
extension matches the selected source formats, and writes a copy of each one
in every selected output format to the output folder, optionally scaled down.

Existing files are never overwritten: a numbered name such as photo.0000.jpg
is chosen instead. A JSON conversion log recording every output and error is
written next to the converted images.

Supported formats: bmp, gif, jpg, png, tiff, webp (webp is read-only).`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print plain progress lines instead of the interactive view")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source", "", "source folder to search for images")
	rootCmd.PersistentFlags().StringSliceVar(&fromExts, "from", nil, "source formats to match, e.g. jpg,png (default: all)")

	rootCmd.Flags().StringVar(&outputDir, "output", "", "output folder for converted images")
	rootCmd.Flags().StringSliceVar(&toExts, "to", nil, "output formats to write, e.g. png,bmp (default: jpg)")
	rootCmd.Flags().IntVar(&scale, "scale", 100, "output size in percent of the original (1-100)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if sourceDir != "" {
		cfg.SourceDirectory = sourceDir
	}
	if outputDir != "" {
		cfg.OutputDirectory = outputDir
	}
	if flagChanged(cmd, "from") {
		cfg.SourceExtensions = fromExts
	}
	if flagChanged(cmd, "to") {
		cfg.OutputExtensions = toExts
	}
	if flagChanged(cmd, "scale") {
		cfg.ScalePercent = scale
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

// setupLogger configures and returns a logger. console is false while the
// interactive view owns the terminal.
func setupLogger(cfg *config.Config, console bool) *logrus.Logger {
	loggerCfg := cfg.LoggerConfig(console && !quiet)

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger setup failed, logging to stderr: %v\n", err)
		log = logrus.New()
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// newEngine builds an engine on the real filesystem, configured from cfg.
// The output folder is only validated when requireOutput is set or one is configured.
func newEngine(cfg *config.Config, log *logrus.Logger, stats *statistics.Statistics, requireOutput bool) (*engine.Engine, error) {
	fs := afero.NewOsFs()
	eng := engine.New(fs, codec.NewImaging(fs), log, stats, engine.Options{
		ProgressEvery:    cfg.Progress.Every,
		ProgressInterval: cfg.Progress.Interval,
	})

	if cfg.SourceDirectory == "" {
		return nil, fmt.Errorf("no source folder: pass --source or set source_directory")
	}
	if err := eng.SetSourcePath(cfg.SourceDirectory); err != nil {
		return nil, fmt.Errorf("source folder: %w", err)
	}

	if cfg.OutputDirectory != "" {
		if err := eng.SetOutputPath(cfg.OutputDirectory); err != nil {
			return nil, fmt.Errorf("output folder: %w", err)
		}
	} else if requireOutput {
		return nil, fmt.Errorf("no output folder: pass --output or set output_directory")
	}

	eng.SetSourceFilter(cfg.SourceFilter())
	eng.SetOutputFilter(cfg.OutputFilter())
	if err := eng.SetScale(cfg.ScalePercent); err != nil {
		return nil, err
	}
	return eng, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
