package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/flashui/internal/adapter/output"
	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/core"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
	"github.com/jmylchreest/flashui/internal/schedule"
	"github.com/jmylchreest/flashui/internal/surface"
)

var timelineOpts struct {
	source   string
	file     string
	format   string
	height   int
	noMoves  bool
	maxTasks int
	filter   string
}

var timelineCmd = &cobra.Command{
	Use:   "timeline [category:]message...",
	Short: "Print the presentation timeline without waiting",
	Long: `Run the presenter on a virtual clock and print every lifecycle change.

Nothing is drawn and nothing waits: the whole run completes instantly. Each
message is given the same rendered height (--height); 0 exercises the
fallback height.

Examples:
  flashui timeline one two three
  flashui timeline --format json --height 48 "error:Disk full"
  flashui timeline --file messages.yaml --format yaml
  flashui timeline --filter "to=hiding" one two three
  flashui timeline --filter "category=error,at>=1s" info:a error:b`,
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().StringVar(&timelineOpts.source, "source", "",
		"Message source (args, file, stdin; auto-detects if empty)")
	timelineCmd.Flags().StringVarP(&timelineOpts.file, "file", "f", "",
		"Read messages from a YAML or JSON file")
	timelineCmd.Flags().StringVar(&timelineOpts.format, "format", "plain",
		"Output format (plain, json, yaml)")
	timelineCmd.Flags().IntVar(&timelineOpts.height, "height", 40,
		"Rendered height of every message in pixels (0 uses the fallback height)")
	timelineCmd.Flags().BoolVar(&timelineOpts.noMoves, "no-moves", false,
		"Omit restacking moves")
	timelineCmd.Flags().IntVar(&timelineOpts.maxTasks, "max-tasks", 100000,
		"Stop after this many scheduled tasks")
	timelineCmd.Flags().StringVar(&timelineOpts.filter, "filter", "",
		`Filter events (e.g. "to=hiding", "category=error,at>=1s", "text~disk")`)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	format := output.FormatType(strings.ToLower(timelineOpts.format))
	if !slices.Contains(output.ValidFormats(), format) {
		return fmt.Errorf("unknown format %q (valid: plain, json, yaml)", timelineOpts.format)
	}
	if timelineOpts.height < 0 {
		return fmt.Errorf("height must be >= 0, got %d", timelineOpts.height)
	}

	expr, err := core.ParseFilter(timelineOpts.filter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	notifications, err := loadMessages(timelineOpts.source, timelineOpts.file, args)
	if err != nil {
		return err
	}

	events, err := simulate(getConfig(), notifications, timelineOpts.height, timelineOpts.maxTasks)
	if err != nil {
		return err
	}

	events = core.FilterWithExpr(events, expr, timelineEpoch)

	opts := output.DefaultFormatterOptions()
	opts.Start = timelineEpoch
	opts.ShowMoves = !timelineOpts.noMoves
	return output.NewFormatter(format, opts).Format(os.Stdout, events)
}

var timelineEpoch = time.Unix(0, 0).UTC()

// simulate runs the presenter to completion against an in-memory document on
// a virtual clock and returns every event it emitted.
func simulate(cfg *config.Config, notifications []*model.Notification, height, maxTasks int) ([]presenter.Event, error) {
	sched := schedule.NewManual(timelineEpoch)
	doc := surface.NewDocument(sched, surface.Options{
		Transition:    cfg.Timing.Transition.Duration(),
		DefaultHeight: height,
	}, logger)

	p := presenter.New(doc, sched, presenter.OptionsFromConfig(cfg), logger)
	doc.OnAnimationFinished(p.AnimationFinished)
	defer p.Close()

	var events []presenter.Event
	p.Subscribe(func(ev presenter.Event) {
		events = append(events, ev)
	})

	if err := p.Load(context.Background(), notifications); err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	ran := sched.RunUntilIdle(maxTasks)
	if !p.Idle() {
		return events, fmt.Errorf("timeline did not settle after %d tasks", ran)
	}
	return events, nil
}
