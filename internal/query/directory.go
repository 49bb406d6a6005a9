package query

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/petrijr/wftrack/pkg/api"
)

// LoadDirectory loads every instance log in dir concurrently. Results keep
// the name order of ListInstanceFiles. Files without a tracking header, such
// as a log created by a batch that has not written it yet, are skipped. Any
// other load failure cancels the remaining loads and is returned.
func (m *Manager) LoadDirectory(ctx context.Context, dir string) ([]*api.InstanceHistory, error) {
	files, err := m.ListInstanceFiles(dir)
	if err != nil {
		return nil, err
	}

	out := make([]*api.InstanceHistory, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, err := m.LoadInstance(f.Path)
			if errors.Is(err, api.ErrNotTrackingLog) {
				m.logger.DebugContext(gctx, "load_skipped",
					slog.String("path", f.Path),
					slog.Any("error", err),
				)
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(out, func(h *api.InstanceHistory) bool { return h == nil }), nil
}

// Watch calls fn with the reloaded history whenever an instance log in dir
// is created or written. It returns nil when ctx ends.
//
// A log caught in the middle of a batch may fail to load; such events are
// logged and skipped, the next write triggers a reload.
func (m *Manager) Watch(ctx context.Context, dir string, fn func(*api.InstanceHistory)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !IsInstanceFile(filepath.Base(event.Name)) {
				continue
			}
			h, err := m.LoadInstance(event.Name)
			if err != nil {
				m.logger.DebugContext(ctx, "watch_reload_failed",
					slog.String("path", event.Name),
					slog.Any("error", err),
				)
				continue
			}
			fn(h)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				m.logger.WarnContext(ctx, "watch_overflow", slog.String("dir", dir))
				continue
			}
			return err
		}
	}
}
