package internal

import (
	"fmt"
	"io"
	"log/slog"
)

// Writer provides the output operations that library code needs.
// Raw progress output (the image build stream) goes through Print;
// lifecycle events go through Info and Warn as structured log records. This
// lets callers decide where output lands instead of library code writing to
// global state.
type Writer interface {
	// Print writes raw output to the output stream.
	Print(v ...any)

	// Info records a lifecycle event.
	Info(msg string, args ...any)

	// Warn records a recoverable problem.
	Warn(msg string, args ...any)
}

// StandardWriter implements Writer on top of an io.Writer and a slog.Logger.
type StandardWriter struct {
	out    io.Writer
	logger *slog.Logger
}

// NewStandardWriter creates a Writer that sends raw output to out and events to logger.
func NewStandardWriter(out io.Writer, logger *slog.Logger) *StandardWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandardWriter{
		out:    out,
		logger: logger,
	}
}

// NewDiscardWriter creates a Writer that drops everything.
func NewDiscardWriter() *StandardWriter {
	return NewStandardWriter(io.Discard, slog.New(slog.DiscardHandler))
}

func (w *StandardWriter) Print(v ...any) {
	fmt.Fprint(w.out, v...)
}

func (w *StandardWriter) Info(msg string, args ...any) {
	w.logger.Info(msg, args...)
}

func (w *StandardWriter) Warn(msg string, args ...any) {
	w.logger.Warn(msg, args...)
}
