package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ndstyle/mindflow2/application/services"
)

const debounceDuration = 100 * time.Millisecond

// LimitsFile is the on-disk shape of the hot-reloadable limits.
type LimitsFile struct {
	Limits struct {
		MaxNodes          int `yaml:"max_nodes"`
		MaxNotesLength    int `yaml:"max_notes_length"`
		MaxShareLinkBytes int `yaml:"max_share_link_bytes"`
	} `yaml:"limits"`
}

// LimitsWatcher watches a YAML file and keeps the last valid limits.
type LimitsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  services.Limits
	mu       sync.RWMutex
	onChange []func(services.Limits)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLimitsWatcher loads the file once and prepares to watch it.
func NewLimitsWatcher(path string, logger *zap.Logger) (*LimitsWatcher, error) {
	limits, err := loadLimitsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial limits: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch limits file: %w", err)
	}

	// Editors that save atomically replace the file via rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch limits directory", zap.Error(err))
	}

	return &LimitsWatcher{
		path:    path,
		watcher: watcher,
		current: limits,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Current returns the active limits.
func (w *LimitsWatcher) Current() services.Limits {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback for successful reloads. Register before Start.
func (w *LimitsWatcher) OnChange(fn func(services.Limits)) {
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for changes
func (w *LimitsWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Limits watcher started", zap.String("path", w.path))
}

// Stop stops watching. It is safe to call more than once.
func (w *LimitsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Limits watcher stopped")
	})
}

func (w *LimitsWatcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *LimitsWatcher) reload() {
	limits, err := loadLimitsFromFile(w.path)
	if err != nil {
		w.logger.Error("Invalid limits, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = limits
	w.mu.Unlock()

	if old != limits {
		w.logger.Info("Limits reloaded",
			zap.Int("max_nodes", limits.MaxNodes),
			zap.Int("max_notes_length", limits.MaxNotesLength),
			zap.Int("max_share_link_bytes", limits.MaxShareLinkBytes),
		)
	}

	for _, fn := range w.onChange {
		fn(limits)
	}
}

// loadLimitsFromFile reads and validates a limits file. Zero values fall
// back to the defaults.
func loadLimitsFromFile(path string) (services.Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Limits{}, err
	}

	var file LimitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return services.Limits{}, fmt.Errorf("failed to parse limits file: %w", err)
	}

	limits := services.DefaultLimits()
	if v := file.Limits.MaxNodes; v != 0 {
		limits.MaxNodes = v
	}
	if v := file.Limits.MaxNotesLength; v != 0 {
		limits.MaxNotesLength = v
	}
	if v := file.Limits.MaxShareLinkBytes; v != 0 {
		limits.MaxShareLinkBytes = v
	}

	if err := validateLimits(limits); err != nil {
		return services.Limits{}, err
	}
	return limits, nil
}

func validateLimits(l services.Limits) error {
	if l.MaxNodes < 1 {
		return fmt.Errorf("max_nodes must be at least 1, got %d", l.MaxNodes)
	}
	if l.MaxNotesLength < 1 {
		return fmt.Errorf("max_notes_length must be at least 1, got %d", l.MaxNotesLength)
	}
	if l.MaxShareLinkBytes < 256 {
		return fmt.Errorf("max_share_link_bytes must be at least 256, got %d", l.MaxShareLinkBytes)
	}
	return nil
}
