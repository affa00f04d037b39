package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/lexicon"
)

// WatchOption configures Watch.
type WatchOption func(*watcher)

// WithLogger sets the logger used for reload outcomes. Logging is discarded
// by default.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

type watcher struct {
	logger *slog.Logger
}

// Watch loads every catalog document in dir, then blocks reloading files as
// they change until ctx is canceled, returning the context's error. The
// directory is watched non-recursively; files renamed into place arrive as
// create events and reload like any other change. Read and parse failures
// during a reload are logged and skipped. When the directory itself is
// removed or renamed the watch is re-added, and Watch returns an error if
// the path cannot be watched again.
func Watch(ctx context.Context, res *lexicon.Resolver, dir string, opts ...WatchOption) error {
	w := &watcher{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(w)
	}

	if err := Load(res, os.DirFS(dir)); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start catalog watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching catalog directory", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				if filepath.Clean(ev.Name) != filepath.Clean(dir) {
					continue
				}
				// fsnotify drops the watch together with the directory
				// inode, so the path must be re-added before events
				// flow again.
				if err := fw.Add(dir); err != nil {
					return fmt.Errorf("failed to rewatch %s: %w", dir, err)
				}
				if err := Load(res, os.DirFS(dir)); err != nil {
					w.logger.Error("failed to reload catalog directory",
						slog.String("dir", dir), slog.String("error", err.Error()))
				}
				continue
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if !supported(filepath.Ext(ev.Name)) {
				continue
			}
			w.reload(res, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("catalog watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *watcher) reload(res *lexicon.Resolver, name string) {
	raw, err := os.ReadFile(name)
	if err != nil {
		w.logger.Error("failed to read catalog",
			slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	doc, err := parseDocument(raw, filepath.Ext(name), name)
	if err != nil {
		w.logger.Error("failed to parse catalog",
			slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	if err := Apply(res, doc); err != nil {
		w.logger.Error("failed to apply catalog",
			slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	w.logger.Info("catalog reloaded", slog.String("file", name))
}
