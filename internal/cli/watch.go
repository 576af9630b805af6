package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ftpaccounts/internal/config"
)

// watch keeps a directory fresh until interrupted and reports every
// reload. Files are followed with filesystem notifications, other storage
// is polled.
func (a *App) watch(ctx context.Context) error {
	d, err := a.openDirectory(ctx)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(ctx, cancelFunc)

	path := a.config.UsersFile
	cancelReload := d.OnReload(func() {
		fmt.Fprintf(a.out, "Reloaded %s\n", path)
	})
	defer cancelReload()

	fmt.Fprintf(a.out, "Watching %s (Ctrl+C to stop)\n", path)

	var (
		wg       sync.WaitGroup
		watchErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if a.config.Storage == config.StorageFile {
			watchErr = d.Watch(ctx)
		} else {
			watchErr = d.Poll(ctx, a.config.PollInterval)
		}
		if watchErr != nil {
			a.logger.Error(ctx, watchErr.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
	return watchErr
}
