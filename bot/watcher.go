package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/intent"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook registers a function called after every reload attempt
// with its result.
func WithReloadHook(fn func(error)) WatchOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// Watcher reloads a Bot when its catalog file changes.
//
// The parent directory is watched rather than the file, so editors that
// save by rename are seen. Bursts of events are coalesced.
type Watcher struct {
	bot      *Bot
	path     string
	debounce time.Duration
	onReload func(error)

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a Watcher for the catalog file at path.
func NewWatcher(b *Bot, path string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	if _, err := intent.FormatFromPath(abs); err != nil {
		return nil, err
	}

	w := &Watcher{
		bot:      b,
		path:     abs,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.watcher = fw
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.bot.logger.Info("watching catalog", zap.String("path", w.path))
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	w.cancel = nil
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.bot.logger.Warn("catalog watcher error", zap.Error(err))

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	src, err := intent.LoadFile(w.path)
	if err == nil {
		err = w.bot.Reload(src)
	}
	if err != nil {
		w.bot.logger.Warn("catalog reload failed, keeping previous catalog",
			zap.String("path", w.path),
			zap.Error(err),
		)
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}
