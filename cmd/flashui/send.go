package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/flashui/internal/adapter/input"
	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/model"
)

var sendOpts struct {
	category string
	appName  string
	replaces uint32
	timeout  time.Duration
}

var sendCmd = &cobra.Command{
	Use:   "send [category:]message...",
	Short: "Send flash messages to the running flashuid",
	Long: `Send flash messages to flashuid (or any notification daemon) over D-Bus.

Each argument becomes one notification. The category travels in the
"category" hint as "flash.<category>"; flashuid maps it back, other daemons
see an ordinary notification.

Examples:
  flashui send "Build finished"
  flashui send success:Deployed error:Rollback
  flashui send --category warning "Battery low"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.category, "category", "c", "",
		"Category for messages without a prefix (info, success, warning, error)")
	sendCmd.Flags().StringVar(&sendOpts.appName, "app", "flashui",
		"Application name reported to the daemon")
	sendCmd.Flags().Uint32Var(&sendOpts.replaces, "replaces", 0,
		"Replace the notification with this ID (first message only)")
	sendCmd.Flags().DurationVar(&sendOpts.timeout, "timeout", 5*time.Second,
		"D-Bus call timeout")
}

func runSend(cmd *cobra.Command, args []string) error {
	fallback := model.CategoryInfo
	if sendOpts.category != "" {
		c, ok := model.ParseCategory(sendOpts.category)
		if !ok {
			return fmt.Errorf("unknown category %q", sendOpts.category)
		}
		fallback = c
	}

	messages, err := buildMessages(args, fallback)
	if err != nil {
		return err
	}
	messages[0].ReplacesID = sendOpts.replaces

	ctx, cancel := context.WithTimeout(context.Background(), sendOpts.timeout)
	defer cancel()

	for _, msg := range messages {
		msg.AppName = sendOpts.appName
		id, err := dbus.Send(ctx, msg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

// buildMessages turns arguments into messages. An explicit "category:" prefix
// beats the fallback category.
func buildMessages(args []string, fallback model.Category) ([]dbus.Message, error) {
	messages := make([]dbus.Message, 0, len(args))
	for _, arg := range args {
		category, text := input.ParseMessage(arg)
		if !hasCategoryPrefix(arg) {
			category = fallback
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("empty message %q", arg)
		}
		messages = append(messages, dbus.Message{Text: text, Category: category})
	}
	return messages, nil
}

func hasCategoryPrefix(arg string) bool {
	prefix, _, found := strings.Cut(arg, ":")
	if !found {
		return false
	}
	_, ok := model.ParseCategory(prefix)
	return ok && strings.TrimSpace(prefix) != ""
}
