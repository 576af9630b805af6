package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/models"
)

// add creates or replaces an enabled account. The home directory is asked
// for when it is not given, the password always is. A missing document is
// created.
func (a *App) add(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: usage: add <name> [home]", common.ErrorInvalidArgument)
	}

	account := models.NewAccount(args[0])
	account.Enabled = true

	if len(args) == 2 {
		account.HomeDirectory = args[1]
	} else {
		home, err := GetSimpleText(a.reader, "Home directory", a.out)
		if err != nil {
			return fmt.Errorf("read home directory: %w", err)
		}
		account.HomeDirectory = home
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)

	account.Password, err = a.hasher.Hash(string(pw))
	if err != nil {
		return err
	}

	d, err := a.openDirectory(ctx)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if err := account.Validate(); err != nil {
			return err
		}
		if _, err := a.repo.Save(ctx, a.config.UsersFile, account); err != nil {
			return err
		}
		a.logger.Info(ctx, "accounts document created", "path", a.config.UsersFile)
	case err != nil:
		return err
	default:
		if err := d.Save(ctx, account); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "Account '%s' saved\n", account.Name)
	return nil
}
