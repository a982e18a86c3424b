// Package core provides filtering of presenter event timelines.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: kind, id, text, category, from, to, offset, at
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	// Parsed values
	regex    *regexp.Regexp
	intVal   int
	stateVal model.State
	at       time.Duration
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering events.
type FilterOptions struct {
	Kind     presenter.EventKind // Exact kind (empty=any)
	Category model.Category      // Exact category (empty=any)
	Limit    int                 // Maximum results (0=unlimited)
}

// Filter filters events based on the provided options.
func Filter(events []presenter.Event, opts FilterOptions) []presenter.Event {
	result := make([]presenter.Event, 0, len(events))

	for _, ev := range events {
		if opts.Kind != "" && ev.Kind != opts.Kind {
			continue
		}
		if opts.Category != "" && ev.Category != opts.Category {
			continue
		}
		result = append(result, ev)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses an offset from the start of a timeline. Bare integers
// are milliseconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	return d, nil
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: kind, id, text, category, from, to, offset, at
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "to=hiding" - every notification starting to hide
//   - "category=error,kind=transition" - lifecycle of error notifications
//   - "text~disk" - text contains "disk"
//   - "at>=2s,at<3s" - events between 2s and 3s into the run
//   - "offset>100" - notifications placed below 100px
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "to=shown" or "text~error".
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "kind", "type":
		c.Field = "kind"
	case "id":
	case "text", "message", "msg":
		c.Field = "text"
	case "category", "cat":
		c.Field = "category"
	case "from", "to", "state":
		if c.Field == "state" {
			c.Field = "to"
		}
		if c.Operator == FilterOpContains || c.Operator == FilterOpRegex {
			break
		}
		if err := c.stateVal.UnmarshalText([]byte(c.Value)); err != nil {
			return fmt.Errorf("invalid state value: %w", err)
		}
	case "offset", "top":
		c.Field = "offset"
		n, err := strconv.Atoi(c.Value)
		if err != nil {
			return fmt.Errorf("invalid offset value: %s", c.Value)
		}
		c.intVal = n
	case "at", "time":
		c.Field = "at"
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid time value: %w", err)
		}
		c.at = d
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if an event matches the filter expression. start is the
// timeline origin that "at" conditions are measured from.
func (f *FilterExpr) Match(ev presenter.Event, start time.Time) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(ev, start) {
			return false
		}
	}
	return true
}

// Match tests if an event matches this single condition.
func (c *FilterCondition) Match(ev presenter.Event, start time.Time) bool {
	switch c.Field {
	case "kind":
		return c.matchString(string(ev.Kind))
	case "id":
		return c.matchString(ev.ID)
	case "text":
		return c.matchString(ev.Text)
	case "category":
		return c.matchString(string(ev.Category))
	case "from":
		return c.matchState(ev.From)
	case "to":
		return c.matchState(ev.To)
	case "offset":
		return c.matchInt(ev.Offset, c.intVal)
	case "at":
		return c.matchInt(int(ev.At.Sub(start)), int(c.at))
	default:
		return false
	}
}

// matchString matches a string field.
func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchState compares states in lifecycle order.
func (c *FilterCondition) matchState(s model.State) bool {
	if c.Operator == FilterOpContains || c.Operator == FilterOpRegex {
		return c.matchString(s.String())
	}
	return c.matchInt(int(s), int(c.stateVal))
}

// matchInt matches an integer field with numeric comparison.
func (c *FilterCondition) matchInt(fieldValue, condValue int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == condValue
	case FilterOpNotEqual:
		return fieldValue != condValue
	case FilterOpGreater:
		return fieldValue > condValue
	case FilterOpLess:
		return fieldValue < condValue
	case FilterOpGreaterEq:
		return fieldValue >= condValue
	case FilterOpLessEq:
		return fieldValue <= condValue
	default:
		return false
	}
}

// FilterWithExpr filters events using a filter expression.
func FilterWithExpr(events []presenter.Event, expr *FilterExpr, start time.Time) []presenter.Event {
	if expr == nil || len(expr.Conditions) == 0 {
		return events
	}

	result := make([]presenter.Event, 0, len(events))
	for _, ev := range events {
		if expr.Match(ev, start) {
			result = append(result, ev)
		}
	}
	return result
}
