// Package input provides input adapters for notification sources.
package input

import (
	"context"
	"io"
	"strings"

	"github.com/jmylchreest/flashui/internal/model"
)

// InputAdapter produces flash notifications from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "args", "stdin").
	Name() string

	// Import reads notifications from the source in display order.
	Import(ctx context.Context) ([]*model.Notification, error)
}

// Options carries the inputs that adapters read from.
type Options struct {
	Args   []string  // Messages given on the command line
	Path   string    // YAML or JSON file
	Reader io.Reader // Standard input replacement; nil uses os.Stdin
}

// DetectSource picks an adapter for the given options: arguments win over a
// file, and standard input is the fallback.
func DetectSource(opts Options) string {
	switch {
	case len(opts.Args) > 0:
		return "args"
	case opts.Path != "":
		return "file"
	default:
		return "stdin"
	}
}

// NewAdapter creates an InputAdapter for the specified source.
// If source is empty, it is detected from opts.
func NewAdapter(source string, opts Options) (InputAdapter, error) {
	if source == "" {
		source = DetectSource(opts)
	}

	switch source {
	case "args":
		return NewArgsAdapter(opts.Args), nil
	case "file":
		if opts.Path == "" {
			return nil, &AdapterError{
				Source:  source,
				Message: "file adapter requires a path",
			}
		}
		return NewFileAdapter(opts.Path), nil
	case "stdin":
		if opts.Reader != nil {
			return NewStdinAdapterWithReader(opts.Reader), nil
		}
		return NewStdinAdapter(), nil
	default:
		return nil, &AdapterError{
			Source:  source,
			Message: "unknown adapter",
		}
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// ParseMessage splits an optional "category:" prefix from text.
// Text without a recognised prefix is an info message.
func ParseMessage(s string) (model.Category, string) {
	if idx := strings.Index(s, ":"); idx > 0 {
		if category, ok := model.ParseCategory(strings.TrimSpace(s[:idx])); ok {
			return category, strings.TrimSpace(s[idx+1:])
		}
	}
	return model.CategoryInfo, strings.TrimSpace(s)
}

// newNotification sanitizes text and builds a notification, returning nil
// for blank text.
func newNotification(source, text string, category model.Category) (*model.Notification, error) {
	text = sanitizeString(text)
	if text == "" {
		return nil, nil
	}
	n, err := model.NewNotification(source, text, category)
	if err != nil {
		return nil, &AdapterError{
			Source:  source,
			Message: "failed to create notification",
			Err:     err,
		}
	}
	return n, nil
}

// sanitizeString replaces control characters with spaces and trims the result.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
