// Package watch reports changes to a single file using fsnotify.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a file and calls a callback when it is written,
// created or renamed into place.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	filePath string
	onChange func()
	debounce time.Duration

	mu      sync.Mutex
	running bool
	pending *time.Timer
	done    chan struct{}
	stopped chan struct{}
}

// NewFileWatcher creates a watcher for filePath. onChange is called from the
// watcher goroutine.
func NewFileWatcher(filePath string, onChange func(), logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		filePath: filePath,
		onChange: onChange,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// SetDebounce sets the quiet period before the callback runs. Zero calls the
// callback for every event.
func (fw *FileWatcher) SetDebounce(d time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.debounce = d
}

// Path returns the watched file path.
func (fw *FileWatcher) Path() string {
	return fw.filePath
}

// Start begins watching. The parent directory is watched so that atomic
// saves (write to temp, rename) are seen.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	dir := filepath.Dir(fw.filePath)
	if err := fw.watcher.Add(dir); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go fw.watch()
	fw.logger.Debug("file watcher started", "path", fw.filePath)
	return nil
}

func (fw *FileWatcher) watch() {
	defer close(fw.stopped)
	filename := filepath.Base(fw.filePath)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				fw.logger.Debug("file changed", "path", fw.filePath, "op", event.Op.String())
				fw.trigger()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "path", fw.filePath, "error", err)

		case <-fw.done:
			return
		}
	}
}

func (fw *FileWatcher) trigger() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running || fw.onChange == nil {
		return
	}
	if fw.debounce <= 0 {
		go fw.onChange()
		return
	}
	if fw.pending != nil {
		fw.pending.Stop()
	}
	fw.pending = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		running := fw.running
		fw.mu.Unlock()
		if running {
			fw.onChange()
		}
	})
}

// Stop stops the watcher and waits for the watch goroutine to exit.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	if fw.pending != nil {
		fw.pending.Stop()
	}
	close(fw.done)
	fw.mu.Unlock()

	err := fw.watcher.Close()
	<-fw.stopped
	fw.logger.Debug("file watcher stopped", "path", fw.filePath)
	return err
}

// IsRunning reports whether the watcher is active.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}
