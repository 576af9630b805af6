package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
)

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: delete <name>", common.ErrorInvalidArgument)
	}
	name := args[0]

	d, err := a.openDirectory(ctx)
	if err != nil {
		return err
	}

	ok, err := d.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: account %q", common.ErrorNotFound, name)
	}

	if err := d.Delete(ctx, name); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account '%s' deleted\n", name)
	return nil
}
