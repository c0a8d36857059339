// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotseed/pkg/ui/converter"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderReport prints one line per step, then the archive summary. The
// error itself is left to the caller.
func (r *Renderer) RenderReport(report *converter.Report) error {
	w := &errWriter{w: r.output}
	if report.DryRun {
		w.printf("DRY RUN - no changes were made\n")
	}
	for _, line := range report.Steps {
		w.printf("[%-7s] %-16s", line.Status, line.Step)
		switch {
		case line.Source != "" && line.Target != "":
			w.printf(" %s -> %s", line.Source, line.Target)
		case line.Target != "":
			w.printf(" %s", line.Target)
		}
		w.printf("\n")
	}
	if a := report.Archive; a != nil {
		w.printf("archive: %s (%d members, %d bytes, %s)\n", a.Path, len(a.Members), a.Bytes, a.Compression)
		for _, m := range a.Members {
			w.printf("  %s\n", m.Name)
		}
		if a.Digest != "" {
			w.printf("blake3: %s\n", a.Digest)
		}
	}
	return w.err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// errWriter keeps the first write error so a report can be printed without
// checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
