package directory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/models"
)

// AnonymousName is the account that authorizes anonymous logins.
const AnonymousName = "anonymous"

// Request is an authentication request built by the host from the
// credentials it received. Named and Anonymous are understood by
// Authenticate; any other implementation is rejected.
type Request interface {
	Method() string
}

// Named asks to authenticate Username with a plaintext Password.
type Named struct {
	Username string
	Password string
}

func (Named) Method() string { return "password" }

// Anonymous asks for the anonymous account.
type Anonymous struct{}

func (Anonymous) Method() string { return "anonymous" }

// Authenticate returns the account req identifies. Bad credentials, unknown
// users and a missing anonymous account all yield
// common.ErrorAuthenticationFailed; an unknown request kind yields
// common.ErrorUnsupportedAuthentication.
func (d *Directory) Authenticate(ctx context.Context, req Request) (models.Account, error) {
	switch r := req.(type) {
	case Named:
		return d.authenticateNamed(ctx, r)
	case *Named:
		if r == nil {
			break
		}
		return d.authenticateNamed(ctx, *r)
	case Anonymous, *Anonymous:
		return d.authenticateAnonymous(ctx)
	}

	return models.Account{}, fmt.Errorf("%w: %T", common.ErrorUnsupportedAuthentication, req)
}

func (d *Directory) authenticateNamed(ctx context.Context, r Named) (models.Account, error) {
	if r.Username == "" {
		d.logger.Warn(ctx, "authentication failed", "method", r.Method(), "reason", "empty username")
		return models.Account{}, common.ErrorAuthenticationFailed
	}

	account, ok, err := d.Get(ctx, r.Username)
	if err != nil {
		return models.Account{}, err
	}

	if !ok || !d.hasher.Verify(r.Password, account.Password) {
		d.logger.Warn(ctx, "authentication failed", "method", r.Method(), "user", r.Username)
		return models.Account{}, common.ErrorAuthenticationFailed
	}

	d.logger.Debug(ctx, "authenticated", "method", r.Method(), "user", account.Name)
	return account, nil
}

func (d *Directory) authenticateAnonymous(ctx context.Context) (models.Account, error) {
	account, ok, err := d.Get(ctx, AnonymousName)
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		d.logger.Warn(ctx, "authentication failed", "method", Anonymous{}.Method(), "reason", "no anonymous account")
		return models.Account{}, common.ErrorAuthenticationFailed
	}

	d.logger.Debug(ctx, "authenticated", "method", Anonymous{}.Method(), "user", account.Name)
	return account, nil
}
