package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"image-converter-go/internal/logger"

	"github.com/spf13/afero"
)

const conversionLogName = "image_conversion_log"

// WriteConversionLog writes the target set as indented JSON to a fresh
// image_conversion_log*.json in the output folder and returns its path.
func (e *Engine) WriteConversionLog() (string, error) {
	return e.writeConversionLog(e.targets)
}

func (e *Engine) writeConversionLog(targets *TargetSet) (string, error) {
	if e.outputPath == "" {
		return "", ErrOutputNotSet
	}

	path, err := SafeOutputPath(e.fs, e.outputPath, conversionLogName, "json")
	if err != nil {
		return "", fmt.Errorf("failed to name conversion log: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(targets); err != nil {
		return "", fmt.Errorf("failed to encode conversion log: %w", err)
	}

	if err := afero.WriteFile(e.fs, path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write conversion log: %w", err)
	}

	logger.WithFile(e.logger, path).Info("Wrote conversion log")
	return path, nil
}
