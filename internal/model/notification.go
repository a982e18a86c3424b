// Package model defines the core data structures for flashui.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category is the flash category attached to a message by its producer.
type Category string

// Categories understood by the hosts and themes.
const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// Categories lists the valid categories in severity order.
var Categories = []Category{CategoryInfo, CategorySuccess, CategoryWarning, CategoryError}

// ParseCategory maps a category name to a Category.
// Accepts the bare names plus the common "message"/"danger"/"warn" aliases.
// Returns false for anything else.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "message", "":
		return CategoryInfo, true
	case "success", "ok":
		return CategorySuccess, true
	case "warning", "warn":
		return CategoryWarning, true
	case "error", "danger":
		return CategoryError, true
	default:
		return "", false
	}
}

// Notification represents one flash message.
// The presenter owns State and Offset; Height is whatever the host measured last.
type Notification struct {
	ID        string   `json:"id" yaml:"id"`
	Source    string   `json:"source" yaml:"source"`
	Text      string   `json:"text" yaml:"text"`
	Category  Category `json:"category" yaml:"category"`
	CreatedAt int64    `json:"created_at" yaml:"created_at"`

	// Presentation state
	Index       int          `json:"index" yaml:"index"`
	State       State        `json:"state" yaml:"state"`
	Height      int          `json:"height,omitempty" yaml:"height,omitempty"`
	Offset      int          `json:"offset" yaml:"offset"`
	Seed        int64        `json:"seed,omitempty" yaml:"seed,omitempty"`
	Decorations []Decoration `json:"decorations,omitempty" yaml:"decorations,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID         = errors.New("id cannot be empty")
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrInvalidCategory = errors.New("category must be one of info, success, warning, error")
	ErrInvalidIndex    = errors.New("index cannot be negative")
)

// NewNotification creates a pending Notification with a generated ULID.
func NewNotification(source, text string, category Category) (*Notification, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}
	if category == "" {
		category = CategoryInfo
	}

	return &Notification{
		ID:        id.String(),
		Source:    source,
		Text:      text,
		Category:  category,
		CreatedAt: time.Now().Unix(),
		State:     StatePending,
	}, nil
}

// Validate checks that the notification can be presented.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(n.Text) == "" {
		return ErrEmptyText
	}
	if !n.Category.Valid() {
		return ErrInvalidCategory
	}
	if n.Index < 0 {
		return ErrInvalidIndex
	}
	return nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ClassName returns the host class for the category, e.g. "flash-error".
func (c Category) ClassName() string {
	if !c.Valid() {
		return "flash-" + string(CategoryInfo)
	}
	return "flash-" + string(c)
}

// TextTruncated returns the text collapsed to one line and cut to maxLen characters.
func (n *Notification) TextTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	text := strings.Join(strings.Fields(n.Text), " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// CreatedAtTime returns the creation timestamp as a time.Time.
func (n *Notification) CreatedAtTime() time.Time {
	return time.Unix(n.CreatedAt, 0)
}

// Clone creates a deep copy of the notification.
func (n *Notification) Clone() *Notification {
	clone := *n
	if n.Decorations != nil {
		clone.Decorations = make([]Decoration, len(n.Decorations))
		copy(clone.Decorations, n.Decorations)
	}
	return &clone
}
