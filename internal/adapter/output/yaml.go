package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/flashui/internal/presenter"
)

// YAMLFormatter formats a timeline as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes events as a YAML sequence of records.
func (f *YAMLFormatter) Format(w io.Writer, events []presenter.Event) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Records(events, f.opts)); err != nil {
		return fmt.Errorf("failed to encode timeline: %w", err)
	}
	return encoder.Close()
}
