// Package store persists state shared between flashui and flashuid. Only Do
// Not Disturb lives here; presenter state is never persisted.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DataDir returns the path to the flashui data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/flashui.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "flashui"), nil
}

// StateFilePath returns the path to the state file.
func StateFilePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.json"), nil
}

// DnDTrigger represents what triggered the DnD state change.
type DnDTrigger string

const (
	// DnDTriggerUser indicates a user-initiated change (CLI, TUI, bar module).
	DnDTriggerUser DnDTrigger = "user"
	// DnDTriggerSystem indicates a system event triggered the change.
	DnDTriggerSystem DnDTrigger = "system"
)

// DnDTransition records details about a DnD state change.
type DnDTransition struct {
	Trigger   DnDTrigger `json:"trigger"`
	Reason    string     `json:"reason"`           // e.g. "dnd on"
	Source    string     `json:"source,omitempty"` // e.g. "cli", "waybar"
	Timestamp int64      `json:"timestamp"`
}

// SharedState contains state shared between flashui and flashuid.
// This is persisted to ~/.local/share/flashui/state.json
type SharedState struct {
	DnDEnabled        bool           `json:"dnd_enabled"`
	DnDLastTransition *DnDTransition `json:"dnd_last_transition,omitempty"`

	SchemaVersion int `json:"schema_version"`
}

// CurrentSchemaVersion is the current version of the state schema.
const CurrentSchemaVersion = 1

// stateFileMutex serializes access to state files within one process.
var stateFileMutex sync.RWMutex

// DefaultSharedState returns a new SharedState with default values.
func DefaultSharedState() *SharedState {
	return &SharedState{
		SchemaVersion: CurrentSchemaVersion,
	}
}

// LoadSharedState loads the shared state from path. A missing or corrupted
// file yields the default state.
func LoadSharedState(path string) (*SharedState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSharedState(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state SharedState
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultSharedState(), nil
	}
	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}
	return &state, nil
}

// SaveSharedState writes the shared state to path atomically.
func SaveSharedState(path string, state *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// SetDnD updates the Do Not Disturb state and records the transition.
func (s *SharedState) SetDnD(enabled bool, trigger DnDTrigger, reason, source string, now time.Time) {
	s.DnDEnabled = enabled
	s.DnDLastTransition = &DnDTransition{
		Trigger:   trigger,
		Reason:    reason,
		Source:    source,
		Timestamp: now.Unix(),
	}
}

// ToggleDnD flips the Do Not Disturb state and returns the new value.
func (s *SharedState) ToggleDnD(trigger DnDTrigger, reason, source string, now time.Time) bool {
	s.SetDnD(!s.DnDEnabled, trigger, reason, source, now)
	return s.DnDEnabled
}
