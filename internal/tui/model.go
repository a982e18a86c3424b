// Package tui provides the BubbleTea-based terminal notification host.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
	"github.com/jmylchreest/flashui/internal/schedule"
	"github.com/jmylchreest/flashui/internal/surface"
)

// eventBuffer is the number of presenter events queued for the UI.
const eventBuffer = 256

// idleCheckInterval is how often exit-when-idle polls the presenter. Events
// are dropped when the UI falls behind, so the final removal may never arrive.
const idleCheckInterval = 250 * time.Millisecond

// Model is the main TUI model.
type Model struct {
	cfg       *config.Config
	board     *Board
	presenter *presenter.Presenter
	pending   []*model.Notification

	// Components
	help help.Model
	keys KeyMap

	// State
	events       chan presenter.Event
	unsubscribe  func()
	showHelp     bool
	exitWhenIdle bool
	loaded       bool
	loadErr      error
	width        int
	height       int
	ready        bool
	lastEvent    string

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a TUI model that presents notifications on board through p.
// Notifications are loaded when the program starts.
func New(cfg *config.Config, board *Board, p *presenter.Presenter, notifications []*model.Notification, exitWhenIdle bool) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	events := make(chan presenter.Event, eventBuffer)
	unsubscribe := p.Subscribe(func(ev presenter.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	h := help.New()

	return Model{
		cfg:          cfg,
		board:        board,
		presenter:    p,
		pending:      notifications,
		help:         h,
		keys:         DefaultKeyMap(),
		events:       events,
		unsubscribe:  unsubscribe,
		showHelp:     cfg.TUI.ShowHelp,
		exitWhenIdle: exitWhenIdle,
	}
}

type loadedMsg struct {
	err error
}

type eventMsg struct {
	event presenter.Event
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type idleTickMsg struct{}

// Init loads the notifications and starts listening for presenter events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load, m.waitForEvent}
	if m.exitWhenIdle {
		cmds = append(cmds, checkIdle())
	}
	return tea.Batch(cmds...)
}

func checkIdle() tea.Cmd {
	return tea.Tick(idleCheckInterval, func(time.Time) tea.Msg {
		return idleTickMsg{}
	})
}

// Err returns the error from loading the notifications, if any.
func (m Model) Err() error {
	return m.loadErr
}

// load hands the notifications to the presenter.
func (m Model) load() tea.Msg {
	err := m.presenter.Load(context.Background(), m.pending)
	return loadedMsg{err: err}
}

// waitForEvent blocks until the presenter reports an event.
func (m Model) waitForEvent() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return nil
	}
	return eventMsg{event: ev}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.board.SetWidth(min(msg.Width, m.cfg.Layout.Width/8))
		return m, nil

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.loadErr = msg.err
			m.statusMsg = "Failed to load notifications: " + msg.err.Error()
			m.statusErr = true
			if m.exitWhenIdle {
				return m, m.quit()
			}
			return m, nil
		}
		if m.exitWhenIdle && m.presenter.Idle() {
			return m, m.quit()
		}
		return m, nil

	case eventMsg:
		m.lastEvent = describeEvent(msg.event)
		if m.exitWhenIdle && m.loaded && m.presenter.Idle() {
			return m, m.quit()
		}
		return m, m.waitForEvent

	case idleTickMsg:
		if m.loaded && m.presenter.Idle() {
			return m, m.quit()
		}
		return m, checkIdle()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		id, ok := m.newestShown()
		if !ok {
			return m, func() tea.Msg {
				return statusMsg{text: "Nothing to dismiss", isErr: false}
			}
		}
		m.presenter.Dismiss(id)
		return m, nil

	case key.Matches(msg, m.keys.DismissAll):
		count := 0
		for _, n := range m.presenter.Snapshot() {
			if m.presenter.Dismiss(n.ID) {
				count++
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Dismissed %d", count), isErr: false}
		}
	}

	return m, nil
}

// newestShown returns the shown notification with the highest index.
func (m Model) newestShown() (string, bool) {
	snapshot := m.presenter.Snapshot()
	for i := len(snapshot) - 1; i >= 0; i-- {
		if snapshot[i].State == model.StateShown {
			return snapshot[i].ID, true
		}
	}
	return "", false
}

func (m Model) quit() tea.Cmd {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.presenter.Close()
	return tea.Quit
}

// View renders the TUI.
func (m Model) View() string {
	s := m.board.Render()
	if s == "" {
		s = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("No notifications on screen")
	}
	s += "\n"

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else if m.lastEvent != "" {
		s += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.lastEvent)
	}

	if m.showHelp {
		s += "\n" + m.help.View(m.keys)
	}
	return s
}

func describeEvent(ev presenter.Event) string {
	if ev.Kind == presenter.EventMove {
		return fmt.Sprintf("[%d] moved to %dpx", ev.Index, ev.Offset)
	}
	return fmt.Sprintf("[%d] %s -> %s", ev.Index, ev.From, ev.To)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config        *config.Config
	Notifications []*model.Notification
	ExitWhenIdle  bool
	Logger        *slog.Logger
}

// Run presents the notifications in the terminal until the user quits, or
// until every notification is removed when ExitWhenIdle is set.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sched := schedule.NewRealScheduler()
	board := NewBoard(sched, surface.Options{
		Transition: cfg.Timing.Transition.Duration(),
	}, cfg.TUI.LineHeight, logger)

	p := presenter.New(board, sched, presenter.OptionsFromConfig(cfg), logger)
	board.OnAnimationFinished(p.AnimationFinished)
	defer p.Close()

	m := New(cfg, board, p, opts.Notifications, opts.ExitWhenIdle || cfg.TUI.ExitWhenIdle)
	prog := tea.NewProgram(m, tea.WithAltScreen())

	final, err := prog.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
