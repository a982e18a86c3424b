package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/flashui/internal/adapter/input"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/tui"
)

var showOpts struct {
	source       string
	file         string
	exitWhenIdle bool
}

var showCmd = &cobra.Command{
	Use:   "show [category:]message...",
	Short: "Show flash messages in the terminal",
	Long: `Show flash messages in the terminal.

Messages come from the arguments, a YAML/JSON file (--file), or stdin (one
per line, or a JSON array of {"text", "category"} objects). A message may be
prefixed with its category: info, success, warning or error.

Key bindings:
  d   Dismiss the newest visible message
  D   Dismiss everything
  ?   Toggle help
  q   Quit

Examples:
  flashui show "Saved" "success:Deployed" "error:Build failed"
  make 2>&1 | tail -3 | flashui show --exit-when-idle
  flashui show --file messages.yaml`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	addShowFlags(showCmd)
}

func addShowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&showOpts.source, "source", "",
		"Message source (args, file, stdin; auto-detects if empty)")
	cmd.Flags().StringVarP(&showOpts.file, "file", "f", "",
		"Read messages from a YAML or JSON file")
	cmd.Flags().BoolVar(&showOpts.exitWhenIdle, "exit-when-idle", false,
		"Exit once every message has been removed")
}

func runShow(cmd *cobra.Command, args []string) error {
	notifications, err := loadMessages(showOpts.source, showOpts.file, args)
	if err != nil {
		return err
	}

	return tui.Run(tui.RunOptions{
		Config:        getConfig(),
		Notifications: notifications,
		ExitWhenIdle:  showOpts.exitWhenIdle,
		Logger:        logger,
	})
}

var errNoMessages = errors.New("no messages: pass them as arguments, with --file, or on stdin")

// loadMessages imports notifications from the selected source. Reading from
// an interactive terminal is refused rather than blocking.
func loadMessages(source, file string, args []string) ([]*model.Notification, error) {
	opts := input.Options{Args: args, Path: file}
	if source == "" {
		source = input.DetectSource(opts)
	}
	if source == "stdin" && stdinIsTerminal() {
		return nil, errNoMessages
	}

	adapter, err := input.NewAdapter(source, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifications, err := adapter.Import(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages from %s: %w", adapter.Name(), err)
	}
	if len(notifications) == 0 {
		return nil, errNoMessages
	}
	logger.Debug("loaded messages", "source", adapter.Name(), "count", len(notifications))
	return notifications, nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
