package engine

import (
	"errors"
	"fmt"
	"os"

	"image-converter-go/internal/formats"
	"image-converter-go/internal/logger"

	"github.com/spf13/afero"
)

// Discover walks the source folder and rebuilds the target set from every regular
// file whose extension passes the source filter. Symlinked folders are not followed.
//
// A canceled discovery clears the source folder and returns an empty set.
func (e *Engine) Discover(progress DiscoveryProgressFunc) (DiscoveryResult, error) {
	if e.sourcePath == "" {
		return DiscoveryResult{}, ErrSourceNotSet
	}

	e.cancelDiscovery.Store(false)
	e.targets = NewTargetSet()
	e.stats.ResetDiscovery()

	root := e.sourcePath
	log := logger.WithOperation(e.logger, "discover")
	log.Infof("Searching %s for %s images", root, e.sourceFilter)
	e.notify("info", fmt.Sprintf("Searching %s", root))

	targets := NewTargetSet()
	th := newThrottle(e.opts.ProgressEvery, e.opts.ProgressInterval, e.opts.Now)
	scanned := 0
	canceled := false

	err := afero.Walk(e.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warnf("Error accessing path %s: %v", path, err)
			return nil
		}
		if info.IsDir() || !e.isRegularFile(path, info) {
			return nil
		}

		scanned++
		e.stats.IncrementFilesScanned()
		if ext, ok := formats.MatchPath(path, e.sourceFilter); ok {
			targets.Add(path)
			e.stats.IncrementTargetsFound()
			log.Debugf("Matched %s as %s", path, ext)
		}

		if th.due(scanned) {
			if progress != nil {
				progress(targets.Len(), scanned)
			}
			if e.cancelDiscovery.Load() {
				canceled = true
				return errStopWalk
			}
		}
		return nil
	})

	if canceled {
		e.ClearSourcePath()
		log.Infof("File search canceled after %d files", scanned)
		e.notify("warning", "File search canceled")
		return DiscoveryResult{Targets: e.targets, ErroredKeys: []string{}, Canceled: true, Scanned: scanned}, nil
	}
	if err != nil && !errors.Is(err, errStopWalk) {
		return DiscoveryResult{}, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	e.targets = targets
	if progress != nil {
		progress(targets.Len(), scanned)
	}

	errored := targets.ErroredKeys()
	log.Infof("Finished with %d images found, %d files with errors", targets.Len(), len(errored))
	e.notify("info", fmt.Sprintf("Finished with %d images found", targets.Len()))

	return DiscoveryResult{Targets: targets, ErroredKeys: errored, Scanned: scanned}, nil
}

// isRegularFile accepts regular files and symlinks that resolve to one.
func (e *Engine) isRegularFile(path string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink == 0 {
		return info.Mode().IsRegular()
	}
	target, err := e.fs.Stat(path)
	if err != nil {
		return false
	}
	return target.Mode().IsRegular()
}
