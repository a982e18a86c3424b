// Package main is the entry point for the flashuid notification daemon.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/flashui/internal/audio"
	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/daemon"
	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/display"
	"github.com/jmylchreest/flashui/internal/presenter"
	"github.com/jmylchreest/flashui/internal/store"
	"github.com/jmylchreest/flashui/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.flashuid"
	appName = "flashuid"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	monitorMode := flag.Bool("monitor", false, "Run in monitor mode (mirror notifications sent to another daemon as flashes, without claiming the bus name)")
	configPath := flag.String("config", "", "Config file path (default: $XDG_CONFIG_HOME/flashui/config.toml)")
	listThemes := flag.Bool("list-themes", false, "List available themes and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *listThemes {
		if err := printThemes(); err != nil {
			logger.Error("failed to list themes", "error", err)
			os.Exit(1)
		}
		return
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, path, *monitorMode, logger))
}

func printThemes() error {
	dir, err := theme.ThemesDir()
	if err != nil {
		dir = ""
	}
	themes, err := theme.ListAvailable(dir)
	if err != nil {
		return err
	}
	for _, t := range themes {
		switch {
		case t.IsDefault:
			fmt.Printf("%s (default)\n", t.Name)
		case t.IsBundled:
			fmt.Println(t.Name)
		default:
			fmt.Printf("%s\t%s\n", t.Name, t.Path)
		}
	}
	return nil
}

// notificationSource is either the notification server or the passive
// monitor.
type notificationSource interface {
	SetNotifyHandler(handler dbus.NotificationHandler)
	Start() error
	Stop() error
}

// run starts the GTK application. In monitor mode notifications are mirrored
// from the bus without claiming org.freedesktop.Notifications, so nothing is
// reported back to senders.
func run(cfg *config.Config, configPath string, monitorMode bool, logger *slog.Logger) int {
	logger.Info("starting flashuid", "version", version, "monitor", monitorMode)

	app := adw.NewApplication(appID, 0)

	var (
		source           notificationSource
		server           *dbus.NotificationServer
		displayManager   *display.Manager
		flashPresenter   *presenter.Presenter
		themeLoader      *theme.Loader
		audioManager     *audio.Manager
		configWatcher    *daemon.ConfigWatcher
		stateWatcher     *store.StateWatcher
		internalNotifier *daemon.InternalNotifier
		running          atomic.Bool
	)

	shutdown := func() {
		if audioManager != nil {
			audioManager.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if stateWatcher != nil {
			stateWatcher.Stop()
		}
		if source != nil {
			if err := source.Stop(); err != nil {
				logger.Warn("error stopping notification source", "error", err)
			}
		}
		if flashPresenter != nil {
			flashPresenter.Close()
		}
		if displayManager != nil {
			displayManager.CloseAll()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		display.Invoke(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		themeLoader = theme.NewLoader(cfg.Timing.Transition.Duration(), display.Invoke, logger)
		if err := themeLoader.LoadTheme(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme, using default", "error", err)
		}
		themeLoader.Apply(nil)
		themeLoader.StartHotReload()

		sched := display.NewMainLoopScheduler()
		displayManager = display.NewManager(&app.Application, sched, cfg, logger)
		flashPresenter = presenter.New(displayManager, sched, presenter.OptionsFromConfig(cfg), logger)
		displayManager.OnAnimationFinished(flashPresenter.AnimationFinished)

		var closer daemon.Closer
		if monitorMode {
			source = dbus.NewMonitor(logger)
		} else {
			server = dbus.NewNotificationServer(logger)
			info := dbus.DefaultServerInfo()
			info.Version = version
			server.SetServerInfo(info)
			closer = server
			source = server
		}

		bridge := daemon.NewBridge(flashPresenter, closer, logger)
		flashPresenter.Subscribe(bridge.HandleEvent)
		displayManager.OnDismiss(bridge.HandleDismiss)
		bridge.SetErrorBypass(cfg.DnD.ErrorBypass)
		stateWatcher = startStateWatcher(bridge, logger)

		audioManager = audio.NewManager(cfg, logger)
		audioManager.Start()
		flashPresenter.Subscribe(bridge.SoundFilter(audioManager.HandleEvent))

		// Bus handlers run on the D-Bus goroutine.
		source.SetNotifyHandler(func(n *dbus.DBusNotification, id uint32) {
			display.Invoke(func() { bridge.HandleNotify(n, id) })
		})
		if server != nil {
			server.SetCloseHandler(func(id uint32) {
				display.Invoke(func() { bridge.HandleClose(id) })
			})
		}

		if err := source.Start(); err != nil {
			logger.Error("failed to start notification source", "error", err)
			app.Quit()
			return
		}

		internalNotifier = daemon.NewInternalNotifier(logger)
		internalNotifier.SetNotifyHandler(func(n *dbus.DBusNotification) uint32 {
			if server != nil {
				return server.NotifyInternal(n)
			}
			display.Invoke(func() { bridge.HandleNotify(n, 0) })
			return 0
		})

		var err error
		configWatcher, err = daemon.NewConfigWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.Config) {
				display.Invoke(func() {
					bridge.SetErrorBypass(newConfig.DnD.ErrorBypass)
					applyConfig(cfg, newConfig, flashPresenter, displayManager, audioManager, themeLoader, internalNotifier, logger)
					cfg = newConfig
					internalNotifier.NotifyConfigReloaded()
				})
			})
			configWatcher.SetErrorCallback(func(err error) {
				internalNotifier.NotifyConfigError(err)
			})
			if err := configWatcher.Start(cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		logger.Info("flashuid ready", "dbus_interface", dbus.DBusInterface, "theme", themeLoader.CurrentTheme())
		internalNotifier.NotifyStartup(version)

		// GTK applications quit when their last window closes.
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		shutdown()
		running.Store(false)
	})

	status := app.Run(os.Args)
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}
	logger.Info("flashuid stopped")
	return 0
}

// startStateWatcher applies the shared Do Not Disturb state to the bridge and
// follows changes written by "flashui dnd".
func startStateWatcher(bridge *daemon.Bridge, logger *slog.Logger) *store.StateWatcher {
	path, err := store.StateFilePath()
	if err != nil {
		logger.Warn("failed to get state file path", "error", err)
		return nil
	}

	w, err := store.NewStateWatcher(path, logger)
	if err != nil {
		logger.Warn("failed to create state watcher", "error", err)
		return nil
	}
	w.SetChangeCallback(func(state *store.SharedState) {
		enabled := state.DnDEnabled
		display.Invoke(func() { bridge.SetDoNotDisturb(enabled) })
	})

	state, err := w.Start()
	if state != nil {
		bridge.SetDoNotDisturb(state.DnDEnabled)
		logger.Info("shared state loaded", "dnd_enabled", state.DnDEnabled)
	}
	if err != nil {
		logger.Warn("failed to start state watcher", "error", err)
		return nil
	}
	return w
}

// applyConfig pushes a reloaded configuration into the running components.
// Must be called on the GTK main thread.
func applyConfig(
	old, next *config.Config,
	p *presenter.Presenter,
	m *display.Manager,
	a *audio.Manager,
	l *theme.Loader,
	notifier *daemon.InternalNotifier,
	logger *slog.Logger,
) {
	p.SetOptions(presenter.OptionsFromConfig(next))
	m.UpdateConfig(next)
	a.UpdateConfig(next)
	l.SetTransition(next.Timing.Transition.Duration())

	if next.Theme.Name == old.Theme.Name {
		return
	}
	if err := l.LoadTheme(next.Theme.Name); err != nil {
		logger.Warn("failed to load new theme", "theme", next.Theme.Name, "error", err)
		notifier.NotifyThemeError(err)
		return
	}
	l.StartHotReload()
	notifier.NotifyThemeReloaded(l.CurrentTheme())
}
