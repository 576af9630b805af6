package cli

import (
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
)

// hash prints the digest of a password read from the terminal, for
// pasting into a users document by hand.
func (a *App) hash() error {
	pw, err := GetPassword(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)

	digest, err := a.hasher.Hash(string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, digest)
	return nil
}
