package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/directory"
)

// check authenticates name the way the FTP host would. The anonymous
// account is checked without a password.
func (a *App) check(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: check <name>", common.ErrorInvalidArgument)
	}
	name := args[0]

	d, err := a.openDirectory(ctx)
	if err != nil {
		return err
	}

	var req directory.Request = directory.Anonymous{}
	if name != directory.AnonymousName {
		pw, err := GetPassword(a.out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		defer common.WipeByteArray(pw)

		req = directory.Named{Username: name, Password: string(pw)}
	}

	account, err := d.Authenticate(ctx, req)
	if err != nil {
		fmt.Fprintf(a.out, "Authentication of '%s' failed\n", name)
		return err
	}

	fmt.Fprintf(a.out, "Authenticated '%s': home=%s enabled=%s write=%s admin=%s\n",
		account.Name, account.HomeDirectory, yesNo(account.Enabled), yesNo(account.CanWrite), yesNo(d.IsAdmin(account.Name)))
	return nil
}
