package engine

import (
	"fmt"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/formats"
	"image-converter-go/internal/logger"
)

// ConvertAll converts every target into each enabled output format and writes the
// conversion log to the output folder. A canceled run logs only the entries
// handled before the cancel point.
//
// Failures are recorded on the target entry and never stop the run. The image is
// resized at most once per source and the result reused for every format.
func (e *Engine) ConvertAll(progress ConversionProgressFunc) (ConversionResult, error) {
	if e.outputPath == "" {
		return ConversionResult{}, ErrOutputNotSet
	}

	e.cancelConversion.Store(false)
	e.stats.ResetConversion()
	e.stats.Start()

	targets := e.targets
	total := targets.Len()
	enabled := e.outputFilter.Enabled()

	log := logger.WithOperation(e.logger, "convert")
	log.Infof("Converting %d images to %s at %d%%", total, e.outputFilter, e.scalePercent)
	e.notify("info", fmt.Sprintf("Converting %d images", total))

	paths := targets.Paths()
	handled := 0
	current := ""
	canceled := false
	for _, path := range paths {
		current = path
		if progress != nil {
			progress(current, handled, total)
		}
		if e.cancelConversion.Load() {
			canceled = true
			break
		}

		entry, _ := targets.Get(path)
		e.convertOne(path, entry, enabled)
		handled++
		e.stats.IncrementSourcesHandled()
	}

	if canceled {
		log.Infof("Conversion canceled after %d of %d images", handled, total)
		e.notify("warning", "Conversion canceled")
	}
	e.stats.SetCanceled(canceled)
	e.stats.Finalize()

	result := ConversionResult{
		Targets:     targets,
		ErroredKeys: targets.ErroredKeys(),
		Canceled:    canceled,
		Handled:     handled,
	}

	logged := targets
	if canceled {
		logged = targets.Subset(paths[:handled])
	}
	logPath, err := e.writeConversionLog(logged)
	result.LogPath = logPath
	if progress != nil {
		progress(current, handled, total)
	}
	if err != nil {
		return result, err
	}

	log.Infof("Finished converting %d images, %d with errors", handled, len(result.ErroredKeys))
	return result, nil
}

func (e *Engine) convertOne(path string, entry *TargetEntry, enabled []formats.Extension) {
	log := logger.WithFile(e.logger, path)
	log.Debug("Converting")

	img, err := e.codec.Open(path)
	if err != nil {
		entry.addError(ImageOpenError, "", err)
		e.stats.IncrementOpenErrors()
		e.stats.IncrementSourcesFailed()
		e.stats.AddError(path, "open", err.Error())
		log.Warnf("Error opening image, skipping: %v", err)
		e.notify("error", fmt.Sprintf("Error opening %s", path))
		return
	}

	resized := e.scalePercent == 100
	written := 0
	for _, ext := range enabled {
		outPath, err := SafeOutputPath(e.fs, e.outputPath, path, string(ext))
		if err != nil {
			e.recordFailure(path, entry, ImageSaveError, ext, err)
			continue
		}

		if !resized {
			width, height := img.Size()
			w, h := codec.ScaledSize(width, height, e.scalePercent)
			next, err := safeResize(img, w, h)
			if err != nil {
				e.recordFailure(path, entry, UnknownError, ext, err)
				continue
			}
			log.Debugf("Resized %dx%d to %dx%d", width, height, w, h)
			img, resized = next, true
		}

		if err := safeSave(img, outPath, ext); err != nil {
			kind := UnknownError
			if isIOError(err) {
				kind = ImageSaveError
			}
			e.recordFailure(path, entry, kind, ext, err)
			continue
		}

		entry.addOutput(outPath)
		e.stats.IncrementOutputsWritten(string(ext))
		if info, err := e.fs.Stat(outPath); err == nil {
			e.stats.AddBytesWritten(info.Size())
		}
		written++
		logger.WithOutput(e.logger, path, outPath, string(ext)).Info("Wrote output")
	}

	if written == 0 {
		e.stats.IncrementSourcesFailed()
	}
}

func (e *Engine) recordFailure(path string, entry *TargetEntry, kind ErrorKind, ext formats.Extension, err error) {
	entry.addError(kind, ext, err)
	switch kind {
	case ImageSaveError:
		e.stats.IncrementSaveErrors()
	default:
		e.stats.IncrementUnknownErrors()
	}
	e.stats.AddError(path, "save "+string(ext), err.Error())
	logger.WithFileOperation(e.logger, path, "save").Warnf("%s writing %s: %v", kind, ext, err)
	e.notify("error", fmt.Sprintf("Error saving %s as %s", path, ext))
}

// safeResize and safeSave turn codec panics into errors recorded for the current format.
func safeResize(img codec.Image, width, height int) (out codec.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errCodecPanic, r)
		}
	}()
	return img.Resize(width, height)
}

func safeSave(img codec.Image, path string, ext formats.Extension) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errCodecPanic, r)
		}
	}()
	return img.Save(path, ext)
}
