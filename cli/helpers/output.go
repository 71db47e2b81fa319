package helpers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/compozy/plistyaml/engine/convert"
)

var (
	writtenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Faint(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// ReportPrinter writes conversion reports: successes and skips to out,
// failures to errOut.
type ReportPrinter struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	color  bool
}

// NewReportPrinter creates a printer for the given mode
func NewReportPrinter(out, errOut io.Writer, mode Mode, color bool) *ReportPrinter {
	return &ReportPrinter{out: out, errOut: errOut, mode: mode, color: color}
}

// Mode returns the rendering mode
func (p *ReportPrinter) Mode() Mode { return p.mode }

// Color reports whether output is styled
func (p *ReportPrinter) Color() bool { return p.color }

// Print writes one report line
func (p *ReportPrinter) Print(r *convert.Report) error {
	w := p.out
	if r.Failed() {
		w = p.errOut
	}
	if p.mode == ModeJSON {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	msg := r.Message()
	if p.color {
		msg = styleFor(r.Status).Render(msg)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// PrintAll writes every report in order
func (p *ReportPrinter) PrintAll(reports []*convert.Report) error {
	for _, r := range reports {
		if err := p.Print(r); err != nil {
			return err
		}
	}
	return nil
}

// Error writes err to the failure stream
func (p *ReportPrinter) Error(err error) {
	OutputError(p.errOut, err, p.mode, p.color)
}

func styleFor(status convert.Status) lipgloss.Style {
	switch status {
	case convert.StatusWritten:
		return writtenStyle
	case convert.StatusSkipped:
		return skippedStyle
	default:
		return failedStyle
	}
}
