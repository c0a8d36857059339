// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/style"
	"github.com/arthur-debert/dotseed/pkg/ui/converter"
	"github.com/pterm/pterm"
)

// Renderer provides rich terminal output using lipgloss and pterm styles
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderReport renders every step with a status badge, then the archive.
func (r *Renderer) RenderReport(report *converter.Report) error {
	var b strings.Builder

	b.WriteString(style.TitleStyle.Render("dotseed") + " " + style.PathStyle.Render(report.Home) + "\n")
	if report.DryRun {
		b.WriteString(style.WarningStyle.Render("DRY RUN - no changes were made") + "\n")
	}
	b.WriteString("\n")

	for _, line := range report.Steps {
		b.WriteString(renderStep(line))
		b.WriteString("\n")
	}

	if a := report.Archive; a != nil {
		b.WriteString("\n")
		summary := fmt.Sprintf("%d members, %s", len(a.Members), humanBytes(a.Bytes))
		if a.Compression != "" && a.Compression != "none" {
			summary += ", " + string(a.Compression)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			style.ArchiveStyle.Render("archive"),
			style.PathStyle.Render(a.Path),
			style.MutedStyle.Render("("+summary+")")))
		for _, m := range a.Members {
			b.WriteString(style.Indent(style.MutedStyle.Render(m.Name), 1) + "\n")
		}
		if a.Digest != "" {
			b.WriteString(style.MutedStyle.Render("blake3 "+a.Digest) + "\n")
		}
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func renderStep(line converter.StepLine) string {
	indicator := style.PendingIndicator
	switch line.Status {
	case style.StatusDone:
		indicator = style.SuccessIndicator
	case style.StatusFailed:
		indicator = style.ErrorIndicator
	}

	out := fmt.Sprintf("%s %s %s", indicator, style.Badge(line.Status),
		style.StepStyle(line.Step).Render(fmt.Sprintf("%-16s", line.Step)))
	switch {
	case line.Source != "" && line.Target != "":
		out += fmt.Sprintf(" %s → %s", style.PathStyle.Render(line.Source), style.PathStyle.Render(line.Target))
	case line.Target != "":
		out += " " + style.PathStyle.Render(line.Target)
	}
	return out
}

func renderError(code errors.ErrorCode, msg string) string {
	return fmt.Sprintf("%s Error [%s]: %s",
		pterm.Error.Prefix.Text,
		pterm.Error.MessageStyle.Sprint(string(code)),
		msg)
}

// RenderError renders an error message
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, renderError(errors.GetErrorCode(err), err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintf(r.output, "%s %s\n", pterm.Info.Prefix.Text, msg)
	return err
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
