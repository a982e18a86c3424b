package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/jmylchreest/flashui/internal/model"
)

// StdinAdapter reads notifications from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads notifications from standard input.
// Supports two formats:
// 1. JSON array of entries ({"text", "category"} objects or [category, message] pairs)
// 2. One message per line, with an optional "category:" prefix
func (a *StdinAdapter) Import(ctx context.Context) ([]*model.Notification, error) {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 10 * 1024 * 1024 // 10MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var lines []string
	var data []byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, scanner.Text())
		data = append(data, scanner.Bytes()...)
		data = append(data, '\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		return parseJSONArray(trimmed)
	}

	var notifications []*model.Notification
	for _, line := range lines {
		category, text := ParseMessage(line)
		n, err := newNotification(a.Name(), text, category)
		if err != nil {
			return nil, err
		}
		if n != nil {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}

// parseJSONArray parses a JSON array of entries.
func parseJSONArray(data []byte) ([]*model.Notification, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to parse JSON input",
			Err:     err,
		}
	}
	return convertEntries("stdin", entries)
}
