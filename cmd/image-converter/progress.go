package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"image-converter-go/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

// progressReporter forwards engine progress to the interactive view or prints
// plain lines.
type progressReporter struct {
	updates chan tui.Update
	uiDone  chan struct{}
	out     io.Writer
	quiet   bool
}

// useInteractive reports whether stdout is a terminal the view can draw on.
func useInteractive() bool {
	if plain || quiet {
		return false
	}
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func newProgressReporter(interactive bool, cancel func()) *progressReporter {
	r := &progressReporter{out: os.Stderr, quiet: quiet}
	if !interactive {
		return r
	}

	r.updates = make(chan tui.Update, 64)
	r.uiDone = make(chan struct{})
	program := tea.NewProgram(tui.NewModel(r.updates, cancel))
	go func() {
		if _, err := program.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "progress view failed: %v\n", err)
		}
		// Keep the engine from blocking if the view exited early.
		for range r.updates {
		}
		close(r.uiDone)
	}()
	return r
}

func (r *progressReporter) Discovery(matches, scanned int) {
	if r.updates != nil {
		r.updates <- tui.Update{Phase: tui.PhaseDiscover, Matches: matches, Scanned: scanned}
		return
	}
	if !r.quiet {
		fmt.Fprintf(r.out, "Searching... %d images found, %d files scanned\n", matches, scanned)
	}
}

func (r *progressReporter) Conversion(current string, handled, total int) {
	if r.updates != nil {
		r.updates <- tui.Update{Phase: tui.PhaseConvert, Current: current, Handled: handled, Total: total}
		return
	}
	if !r.quiet {
		fmt.Fprintf(r.out, "[%d/%d] %s\n", handled, total, filepath.Base(current))
	}
}

// Close stops the view and waits until it has released the terminal.
func (r *progressReporter) Close() {
	if r.updates == nil {
		return
	}
	close(r.updates)
	<-r.uiDone
}

// watchSignals calls cancel on SIGINT or SIGTERM until the returned stop is called.
func watchSignals(cancel func()) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-sigChan:
				cancel()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
