package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/flashui/internal/store"
)

var dndOpts struct {
	quiet bool // Suppress output, return exit code only
}

var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Manage Do Not Disturb mode",
	Long: `Manage Do Not Disturb (DnD) mode for flashuid.

While DnD is enabled, flashuid reports incoming notifications as dismissed
without flashing them or playing sounds. Error notifications still flash
when [dnd] error_bypass is set.

The exit code reflects the resulting state: 0 = off, 1 = on.`,
	RunE: dndStatusRun,
}

var dndOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable Do Not Disturb mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateDnD(func(s *store.SharedState, now time.Time) {
			s.SetDnD(true, store.DnDTriggerUser, "dnd on", "cli", now)
		})
	},
}

var dndOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable Do Not Disturb mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateDnD(func(s *store.SharedState, now time.Time) {
			s.SetDnD(false, store.DnDTriggerUser, "dnd off", "cli", now)
		})
	},
}

var dndToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle Do Not Disturb mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateDnD(func(s *store.SharedState, now time.Time) {
			s.ToggleDnD(store.DnDTriggerUser, "dnd toggle", "cli", now)
		})
	},
}

var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Do Not Disturb status",
	RunE:  dndStatusRun,
}

func init() {
	dndCmd.AddCommand(dndOnCmd, dndOffCmd, dndToggleCmd, dndStatusCmd)
	for _, cmd := range []*cobra.Command{dndCmd, dndOnCmd, dndOffCmd, dndToggleCmd, dndStatusCmd} {
		cmd.Flags().BoolVarP(&dndOpts.quiet, "quiet", "q", false,
			"Suppress output, return exit code only (0=off, 1=on)")
	}
	rootCmd.AddCommand(dndCmd)
}

func updateDnD(change func(s *store.SharedState, now time.Time)) error {
	path, err := store.StateFilePath()
	if err != nil {
		return fmt.Errorf("failed to get state file path: %w", err)
	}
	state, err := store.LoadSharedState(path)
	if err != nil {
		return err
	}

	change(state, time.Now())
	if err := store.SaveSharedState(path, state); err != nil {
		return err
	}

	if !dndOpts.quiet {
		fmt.Println(dndLine(state.DnDEnabled))
	}
	exitWithDnD(state.DnDEnabled)
	return nil
}

func dndStatusRun(cmd *cobra.Command, args []string) error {
	path, err := store.StateFilePath()
	if err != nil {
		return fmt.Errorf("failed to get state file path: %w", err)
	}
	state, err := store.LoadSharedState(path)
	if err != nil {
		return err
	}

	if !dndOpts.quiet {
		fmt.Println(dndLine(state.DnDEnabled))
		if t := state.DnDLastTransition; t != nil {
			fmt.Printf("  Last change: %s\n", humanize.Time(time.Unix(t.Timestamp, 0)))
			fmt.Printf("  Trigger: %s\n", t.Trigger)
			if t.Reason != "" {
				fmt.Printf("  Reason: %s\n", t.Reason)
			}
			if t.Source != "" {
				fmt.Printf("  Source: %s\n", t.Source)
			}
		}
	}
	exitWithDnD(state.DnDEnabled)
	return nil
}

func dndLine(enabled bool) string {
	if enabled {
		return "Do Not Disturb: enabled"
	}
	return "Do Not Disturb: disabled"
}

// exitWithDnD exits with status 1 when DnD is on so shell scripts and bar
// modules can branch on it.
func exitWithDnD(enabled bool) {
	if enabled {
		os.Exit(1)
	}
}
