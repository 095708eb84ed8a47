package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses bursts of writes into one rebuild.
const reloadDebounce = 300 * time.Millisecond

// watch rebuilds the model whenever path changes. The parent directory is
// watched so editors that replace the file by rename are seen too.
func (s *Server) watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	s.logger.Info("watching snapshot", "path", abs)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
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
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug("snapshot changed", "op", ev.Op.String())
			timer.Reset(reloadDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "err", err)
		case <-timer.C:
			// a failed rebuild keeps serving the previous model
			if err := s.Load(ctx); err != nil {
				s.logger.Error("reload failed", "path", abs, "err", err)
			}
		}
	}
}
