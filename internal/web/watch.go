package web

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 100 * time.Millisecond

// watchPages reloads the page definitions when a YAML file in the pages
// directory changes. Bursts of events collapse into one reload.
func (s *Server) watchPages(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("web: watch pages: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.cfg.PagesDir); err != nil {
		return fmt.Errorf("web: watch %s: %w", s.cfg.PagesDir, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDefinition(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("page definition changed", zap.String("file", name))
				if err := s.Reload(); err != nil {
					s.logger.Warn("page reload failed", zap.Error(err))
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func isDefinition(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
