package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/nodeward/pkg/errors"
)

// watchDebounce batches the burst of events a single save produces.
const watchDebounce = 100 * time.Millisecond

// Watch calls fn after path is written, created or renamed into place,
// until ctx is done. The parent directory is watched so editors that
// replace the file atomically are still seen. Watch blocks and returns nil
// when ctx is cancelled.
func Watch(ctx context.Context, path string, fn func()) error {
	const op = "config.Watch"
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Configuration(op, err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Configuration(op, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Configuration(op, err)
	}

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

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
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			errors.Report(errors.New(op, errors.KindStorage, err))
		case <-timer.C:
			fn()
		}
	}
}
