package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/store"
)

var statusOpts struct {
	timeout time.Duration
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output daemon and Do Not Disturb status in Waybar's custom module JSON format.

  "custom/flashui": {
    "exec": "flashui status",
    "interval": 5,
    "return-type": "json",
    "on-click": "flashui dnd toggle"
  }

alt and class are one of: active, dnd, foreign (another daemon owns the
notification service), stopped.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().DurationVar(&statusOpts.timeout, "timeout", 2*time.Second,
		"D-Bus call timeout")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), statusOpts.timeout)
	defer cancel()

	var server *dbus.ServerInfo
	if info, err := dbus.ServerInformation(ctx); err == nil {
		server = &info
	} else {
		logger.Debug("no notification server", "error", err)
	}

	dnd := false
	if path, err := store.StateFilePath(); err == nil {
		if state, err := store.LoadSharedState(path); err == nil {
			dnd = state.DnDEnabled
		}
	}

	return json.NewEncoder(os.Stdout).Encode(generateStatus(server, dnd))
}

// generateStatus builds the bar status. server is nil when no daemon answers.
func generateStatus(server *dbus.ServerInfo, dnd bool) WaybarStatus {
	var lines []string
	class := "active"

	switch {
	case server == nil:
		class = "stopped"
		lines = append(lines, "No notification daemon running")
	case server.Name != dbus.DefaultServerInfo().Name:
		class = "foreign"
		lines = append(lines, fmt.Sprintf("Notifications handled by %s %s", server.Name, server.Version))
	default:
		lines = append(lines, fmt.Sprintf("%s %s", server.Name, server.Version))
	}

	if dnd {
		lines = append(lines, "Do Not Disturb: enabled")
		if class == "active" {
			class = "dnd"
		}
	}

	return WaybarStatus{
		Alt:     class,
		Tooltip: strings.Join(lines, "\n"),
		Class:   class,
	}
}
