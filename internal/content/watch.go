package content

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 500 * time.Millisecond

// Watch reloads the portfolio file at path whenever it changes and passes each
// valid result to apply. A file that fails to parse is logged and skipped, so
// the last good portfolio stays live. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file, since most editors
// save by writing a temp file and renaming it over the original.
func Watch(ctx context.Context, path string, log *zap.Logger, apply func(*Portfolio)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching portfolio content", zap.String("path", abs))

	// mu serialises reloads with shutdown; once stopped is set no reload
	// applies, even one whose timer already fired.
	var (
		mu      sync.Mutex
		stopped bool
		timer   *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		mu.Lock()
		stopped = true
		mu.Unlock()
	}()
	reload := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}
		p, err := Load(abs)
		if err != nil {
			log.Error("reload portfolio content", zap.Error(err))
			return
		}
		apply(p)
		log.Info("portfolio content reloaded", zap.String("path", abs))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("content change", zap.String("op", ev.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}
