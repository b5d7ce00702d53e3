package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
source_directory: /photos/in
output_directory: /photos/out
source_extensions: [JPEG, .png, tif]
output_extensions: [png, bmp]
scale_percent: 40
progress:
  every: 10
  interval: 1s
web:
  port: 9090
logging:
  level: DEBUG
  file_path: ""
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.SourceDirectory != "/photos/in" || cfg.OutputDirectory != "/photos/out" {
		t.Fatalf("directories = %q, %q", cfg.SourceDirectory, cfg.OutputDirectory)
	}
	if got := strings.Join(cfg.SourceExtensions, ","); got != "jpg,png,tiff" {
		t.Fatalf("source extensions = %s", got)
	}
	if got := cfg.OutputFilter().String(); got != "bmp,png" {
		t.Fatalf("output filter = %s", got)
	}
	if cfg.ScalePercent != 40 || cfg.Progress.Every != 10 || cfg.Progress.Interval != time.Second {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.Web.Port != 9090 || cfg.Web.Host != "localhost" {
		t.Fatalf("web = %+v", cfg.Web)
	}
	if lc := cfg.LoggerConfig(false); lc.Level != "debug" || lc.FilePath != "" || lc.MaxBackups != 3 {
		t.Fatalf("logger config = %+v", lc)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "scale_percent: 40\n")
	t.Setenv("IMAGE_CONVERTER_SCALE_PERCENT", "25")
	t.Setenv("IMAGE_CONVERTER_WEB_PORT", "7000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ScalePercent != 25 || cfg.Web.Port != 7000 {
		t.Fatalf("env not applied: scale %d port %d", cfg.ScalePercent, cfg.Web.Port)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.SourceFilter().String(); got != "bmp,gif,jpg,png,tiff,webp" {
		t.Fatalf("default source filter = %s", got)
	}
	if got := cfg.OutputFilter().String(); got != "jpg" {
		t.Fatalf("default output filter = %s", got)
	}
	if cfg.ScalePercent != 100 || cfg.Progress.Interval != 200*time.Millisecond {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"scale zero":     func(c *Config) { c.ScalePercent = 0 },
		"scale too big":  func(c *Config) { c.ScalePercent = 150 },
		"unknown source": func(c *Config) { c.SourceExtensions = []string{"heic"} },
		"unknown output": func(c *Config) { c.OutputExtensions = []string{"raw"} },
		"log level":      func(c *Config) { c.Logging.Level = "trace" },
		"port":           func(c *Config) { c.Web.Port = 70000 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate accepted %+v", cfg)
			}
		})
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "scale_percent: [oops\n")); err == nil {
		t.Fatalf("LoadConfig accepted malformed yaml")
	}
}
