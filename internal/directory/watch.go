package directory

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/fsnotify/fsnotify"
)

// Watch refreshes the directory whenever the file holding its source is
// written, created or has its attributes changed. The parent directory is
// watched so that documents replaced by rename are still seen. Only the
// source in effect when Watch starts is followed, and it must be a path on
// the local filesystem.
//
// Refresh failures are logged and watching continues. Watch returns nil
// when ctx is done.
func (d *Directory) Watch(ctx context.Context) error {
	path := filepath.Clean(d.Source())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	d.logger.Info(ctx, "watching accounts document", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod) {
				d.refreshAndLog(ctx)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// Poll refreshes the directory every interval until ctx is done. It suits
// repositories that cannot report changes, such as S3.
func (d *Directory) Poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", common.ErrorInvalidArgument)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info(ctx, "polling accounts document", "path", d.Source(), "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.refreshAndLog(ctx)
		}
	}
}

func (d *Directory) refreshAndLog(ctx context.Context) {
	if err := d.Refresh(ctx); err != nil {
		d.logger.Error(ctx, "accounts refresh failed", "path", d.Source(), "error", err)
	}
}
