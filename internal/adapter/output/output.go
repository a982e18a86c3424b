// Package output provides formatters for presenter timelines.
package output

import (
	"io"
	"strings"
	"time"

	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
)

// Formatter formats a sequence of presenter events.
type Formatter interface {
	// Format writes formatted events to the writer.
	Format(w io.Writer, events []presenter.Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ValidFormats returns all format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Start       time.Time // Timeline origin; zero uses the first event
	TextMaxLen  int       // Maximum text length in plain output (0 = unlimited)
	ShowMoves   bool      // Include restacking moves
	ShowSummary bool      // Append a summary line in plain output
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		TextMaxLen:  60,
		ShowMoves:   true,
		ShowSummary: true,
	}
}

// Record is a timeline entry with time expressed relative to the start.
type Record struct {
	AtMS     int64          `json:"at_ms" yaml:"at_ms"`
	Kind     string         `json:"kind" yaml:"kind"`
	ID       string         `json:"id" yaml:"id"`
	Index    int            `json:"index" yaml:"index"`
	Category model.Category `json:"category" yaml:"category"`
	Text     string         `json:"text" yaml:"text"`
	From     string         `json:"from" yaml:"from"`
	To       string         `json:"to" yaml:"to"`
	Top      int            `json:"top" yaml:"top"`
}

// Records converts events into records, dropping moves unless opts.ShowMoves.
func Records(events []presenter.Event, opts FormatterOptions) []Record {
	start := timelineStart(events, opts)
	records := make([]Record, 0, len(events))
	for _, ev := range events {
		if ev.Kind == presenter.EventMove && !opts.ShowMoves {
			continue
		}
		records = append(records, Record{
			AtMS:     ev.At.Sub(start).Milliseconds(),
			Kind:     string(ev.Kind),
			ID:       ev.ID,
			Index:    ev.Index,
			Category: ev.Category,
			Text:     ev.Text,
			From:     ev.From.String(),
			To:       ev.To.String(),
			Top:      ev.Offset,
		})
	}
	return records
}

func timelineStart(events []presenter.Event, opts FormatterOptions) time.Time {
	if !opts.Start.IsZero() || len(events) == 0 {
		return opts.Start
	}
	return events[0].At
}

// sanitizeText flattens newlines and truncates to maxLen runes.
func sanitizeText(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
