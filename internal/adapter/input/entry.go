package input

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/flashui/internal/model"
)

// entry is one message in a structured input. It accepts either an object
// ({"text": ..., "category": ...}) or a [category, message] pair.
type entry struct {
	Text     string `json:"text" yaml:"text"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// UnmarshalJSON accepts an object or a two-element [category, message] array.
func (e *entry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		return e.fromPair(pair)
	}

	type plain entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = entry(p)
	return nil
}

// UnmarshalYAML accepts a mapping, a two-element sequence or a bare string.
func (e *entry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var pair []string
		if err := value.Decode(&pair); err != nil {
			return err
		}
		return e.fromPair(pair)
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		category, text := ParseMessage(s)
		e.Category = string(category)
		e.Text = text
		return nil
	default:
		type plain entry
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*e = entry(p)
		return nil
	}
}

func (e *entry) fromPair(pair []string) error {
	if len(pair) != 2 {
		return fmt.Errorf("expected [category, message] pair, got %d elements", len(pair))
	}
	e.Category = pair[0]
	e.Text = pair[1]
	return nil
}

// text returns Text, falling back to Message.
func (e entry) text() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Message
}

// category returns the parsed category; unknown names become info.
func (e entry) category() model.Category {
	if category, ok := model.ParseCategory(e.Category); ok {
		return category
	}
	return model.CategoryInfo
}

// convertEntries turns entries into notifications, skipping blank ones.
func convertEntries(source string, entries []entry) ([]*model.Notification, error) {
	var notifications []*model.Notification
	for _, e := range entries {
		n, err := newNotification(source, e.text(), e.category())
		if err != nil {
			return nil, err
		}
		if n != nil {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}
