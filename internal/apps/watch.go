package apps

import (
	"context"
	"fmt"
	log "log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the catalog whenever its file is rewritten, until ctx is
// done. The parent directory is watched since scanners replace the file.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	target, err := filepath.Abs(c.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			changed, err := c.Reload()
			if err != nil {
				log.Warn("Failed to reload catalog", "path", c.path, "err", err)
				continue
			}
			if changed {
				log.Info("Reloaded catalog", "apps", c.Len())
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Catalog watcher error", "err", err)
		}
	}
}
