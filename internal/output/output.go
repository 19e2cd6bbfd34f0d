// Package output renders the reconciled report in the configured
// format.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"

	"github.com/augurlint/augur/pkg/models"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatTOON:
		return FormatTOON, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Writer renders reports and tool outputs.
type Writer struct {
	format  Format
	w       io.Writer
	colored bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithFormat sets the encoding.
func WithFormat(f Format) Option {
	return func(w *Writer) { w.format = f }
}

// WithWriter redirects output.
func WithWriter(out io.Writer) Option {
	return func(w *Writer) { w.w = out }
}

// WithColor toggles colored text output.
func WithColor(enabled bool) Option {
	return func(w *Writer) { w.colored = enabled }
}

// New creates a Writer printing colored text to stdout by default.
func New(opts ...Option) *Writer {
	w := &Writer{format: FormatText, w: os.Stdout, colored: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Render writes the report in the configured format.
func (w *Writer) Render(report *models.Report) error {
	switch w.format {
	case FormatJSON:
		return w.renderJSON(report)
	case FormatTOON:
		return w.renderTOON(report)
	default:
		return w.renderText(report)
	}
}

// RenderTools writes tool outputs. Non-text formats wrap them in the
// same encoding as reports; text prints each output under a header.
func (w *Writer) RenderTools(outputs []models.ToolOutput) error {
	switch w.format {
	case FormatJSON:
		return w.renderJSON(outputs)
	case FormatTOON:
		return w.renderTOON(outputs)
	}
	for _, out := range outputs {
		header := fmt.Sprintf("%s (%s)", out.Tool, out.Project)
		if w.colored {
			color.New(color.Bold).Fprintln(w.w, header)
		} else {
			fmt.Fprintln(w.w, header)
		}
		fmt.Fprintln(w.w, strings.Repeat("=", len(header)))
		fmt.Fprintln(w.w, out.Output)
	}
	return nil
}

func (w *Writer) renderJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.w, string(out))
	return err
}

func (w *Writer) renderTOON(data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.w, string(out))
	return err
}

func (w *Writer) renderText(report *models.Report) error {
	for _, p := range report.Projects {
		line := p.Name
		if p.Revision != "" {
			line += "@" + p.Revision
		}
		if p.Fingerprint != "" {
			line += " (" + shorten(p.Fingerprint) + ")"
		}
		fmt.Fprintln(w.w, line)
	}
	if len(report.Projects) > 0 {
		fmt.Fprintln(w.w)
	}

	if len(report.Warnings) == 0 {
		if w.colored {
			color.New(color.FgGreen).Fprintln(w.w, "no warnings")
		} else {
			fmt.Fprintln(w.w, "no warnings")
		}
	} else {
		table := tablewriter.NewTable(w.w,
			tablewriter.WithConfig(tablewriter.Config{
				Header: tw.CellConfig{
					Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
					Formatting: tw.CellFormatting{AutoFormat: tw.On},
				},
				Row: tw.CellConfig{
					Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				},
			}),
			tablewriter.WithRendition(tw.Rendition{
				Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
				Settings: tw.Settings{
					Separators: tw.Separators{BetweenColumns: tw.Off},
				},
			}),
		)
		table.Header([]string{"severity", "detector", "location", "message"})
		for _, warn := range report.Warnings {
			table.Append([]string{
				w.severity(warn.Severity),
				warn.Detector,
				fmt.Sprintf("%s:%d:%d", warn.Location.File, warn.Location.Line, warn.Location.Col),
				warn.Message,
			})
		}
		table.Render()
	}

	for _, s := range report.UnusedSuppressions {
		fmt.Fprintf(w.w, "unused suppression: %s at %s:%d:%d\n", s.Detector, s.File, s.Line, s.Col)
	}
	return nil
}

func (w *Writer) severity(s models.Severity) string {
	if !w.colored {
		return s.String()
	}
	switch s {
	case models.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(s.String())
	case models.SeverityHigh:
		return color.New(color.FgRed).Sprint(s.String())
	case models.SeverityMedium:
		return color.New(color.FgYellow).Sprint(s.String())
	case models.SeverityLow:
		return color.New(color.FgCyan).Sprint(s.String())
	default:
		return s.String()
	}
}

func shorten(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
