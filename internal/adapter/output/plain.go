package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/jmylchreest/flashui/internal/presenter"
)

// PlainFormatter formats a timeline as aligned text, one event per line.
type PlainFormatter struct {
	opts FormatterOptions
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{opts: opts}
}

// Format writes one line per record, for example:
//
//	+0.5s   [1] pending -> shown   top=70   success  Saved
func (f *PlainFormatter) Format(w io.Writer, events []presenter.Event) error {
	records := Records(events, f.opts)

	var sb strings.Builder
	ids := make(map[string]struct{})
	for _, r := range records {
		ids[r.ID] = struct{}{}

		offset := time.Duration(r.AtMS) * time.Millisecond
		at := "+" + humanize.FtoaWithDigits(offset.Seconds(), 2) + "s"
		var change string
		if r.Kind == string(presenter.EventMove) {
			change = "moved"
		} else {
			change = r.From + " -> " + r.To
		}

		sb.WriteString(fmt.Sprintf("%-8s [%d] %-18s top=%-5d %-8s %s\n",
			at,
			r.Index,
			change,
			r.Top,
			r.Category,
			sanitizeText(r.Text, f.opts.TextMaxLen),
		))
	}

	if f.opts.ShowSummary && len(records) > 0 {
		last := records[len(records)-1]
		span := time.Duration(last.AtMS) * time.Millisecond
		sb.WriteString(fmt.Sprintf("%s, %s over %s sec\n",
			english.Plural(len(ids), "notification", ""),
			english.Plural(len(records), "event", ""),
			humanize.FtoaWithDigits(span.Seconds(), 2),
		))
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}
