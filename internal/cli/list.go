package cli

import (
	"context"
	"fmt"
)

func (a *App) list(ctx context.Context) error {
	d, err := a.openDirectory(ctx)
	if err != nil {
		return err
	}

	names, err := d.ListNames(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		account, ok, err := d.Get(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		rows = append(rows, []string{
			account.Name,
			yesNo(account.Enabled),
			yesNo(account.CanWrite),
			yesNo(d.IsAdmin(name)),
			account.HomeDirectory,
		})
	}

	printTable(a.out, []string{"Name", "Enabled", "Write", "Admin", "Home"}, rows)
	fmt.Fprintf(a.out, "%d account(s)\n", len(names))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
