package export

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// Sink receives a finished export.
type Sink interface {
	Send(text string) error
}

// WriterSink writes the export to W, typically stdout.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Send(text string) error {
	if _, err := io.WriteString(s.W, text); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ClipboardSink copies the export to the system clipboard.
type ClipboardSink struct{}

func (ClipboardSink) Send(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// ClipboardAvailable reports whether a clipboard utility was found.
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
