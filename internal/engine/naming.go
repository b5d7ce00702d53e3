package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// maxNameAttempts bounds the numbered candidates base.0000.ext .. base.9999.ext.
const maxNameAttempts = 10000

// SafeOutputPath returns a path in outputDir named after sourcePath with extension ext
// that does not exist yet. It tries base.ext first, then base.0000.ext upwards.
// The path is not reserved: calling it twice without writing returns the same result.
func SafeOutputPath(fs afero.Fs, outputDir, sourcePath, ext string) (string, error) {
	name := filepath.Base(sourcePath)
	base := strings.TrimSuffix(name, filepath.Ext(name))

	candidate := filepath.Join(outputDir, base+"."+ext)
	for counter := 0; ; counter++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		if counter == maxNameAttempts {
			return "", fmt.Errorf("%w for %s.%s in %s", ErrNameExhausted, base, ext, outputDir)
		}
		candidate = filepath.Join(outputDir, fmt.Sprintf("%s.%04d.%s", base, counter, ext))
	}
}
