package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/flashui/internal/presenter"
)

// JSONFormatter formats a timeline as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes events as a JSON array of records.
func (f *JSONFormatter) Format(w io.Writer, events []presenter.Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Records(events, f.opts))
}
