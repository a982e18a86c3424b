package input

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/flashui/internal/model"
)

// FileAdapter reads notifications from a YAML or JSON file.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates a new FileAdapter.
func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

// Name returns the adapter identifier.
func (a *FileAdapter) Name() string {
	return "file"
}

// fileDocument is the top-level file structure. A bare list is also accepted.
type fileDocument struct {
	Messages []entry `json:"messages" yaml:"messages"`
}

// Import reads the file. The format is chosen by extension: .yaml and .yml
// are YAML, anything else is JSON.
func (a *FileAdapter) Import(ctx context.Context) ([]*model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, &AdapterError{
			Source:  a.Name(),
			Message: "failed to read " + a.path,
			Err:     err,
		}
	}

	var entries []entry
	switch strings.ToLower(filepath.Ext(a.path)) {
	case ".yaml", ".yml":
		entries, err = decodeYAML(data)
	default:
		entries, err = decodeJSON(data)
	}
	if err != nil {
		return nil, &AdapterError{
			Source:  a.Name(),
			Message: "failed to parse " + a.path,
			Err:     err,
		}
	}

	return convertEntries(a.Name(), entries)
}

func decodeYAML(data []byte) ([]entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var entries []entry
		if err := doc.Decode(&entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var fd fileDocument
	if err := doc.Decode(&fd); err != nil {
		return nil, err
	}
	return fd.Messages, nil
}

func decodeJSON(data []byte) ([]entry, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var fd fileDocument
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, err
	}
	return fd.Messages, nil
}
