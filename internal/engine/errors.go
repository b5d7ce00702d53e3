package engine

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// Configuration and precondition errors. Callers match them with errors.Is.
var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrPathNotFound  = errors.New("folder does not exist")
	ErrNotADirectory = errors.New("path is not a folder")
	ErrInvalidScale  = errors.New("scale must be between 1 and 100")
	ErrSourceNotSet  = errors.New("source folder is not set")
	ErrOutputNotSet  = errors.New("output folder is not set")
	ErrNameExhausted = errors.New("error obtaining non-duplicate name")
)

// errCodecPanic wraps a panic raised inside the image codec.
var errCodecPanic = errors.New("codec panic")

// errStopWalk unwinds the discovery walk after a cancellation.
var errStopWalk = errors.New("walk canceled")

// ErrorKind classifies a per-file failure recorded on a target entry.
type ErrorKind string

const (
	ImageOpenError ErrorKind = "ImageOpenError"
	ImageSaveError ErrorKind = "ImageSaveError"
	UnknownError   ErrorKind = "UnknownError"
)

// isIOError reports whether err came from the filesystem rather than the encoder.
func isIOError(err error) bool {
	var pathErr *os.PathError
	var linkErr *os.LinkError
	var errno syscall.Errno
	return errors.As(err, &pathErr) ||
		errors.As(err, &linkErr) ||
		errors.As(err, &errno) ||
		errors.Is(err, io.ErrShortWrite)
}
