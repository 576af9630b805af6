package directory

import (
	"github.com/dmitrijs2005/ftpaccounts/internal/cryptox"
	"github.com/dmitrijs2005/ftpaccounts/internal/logging"
)

// DefaultAdminName is the admin designation of a new directory.
const DefaultAdminName = "admin"

type Option func(*Directory)

// WithHasher sets the hasher used to verify passwords. The default is the
// legacy salted hasher.
func WithHasher(h cryptox.PasswordHasher) Option {
	return func(d *Directory) {
		d.hasher = h
	}
}

func WithLogger(l logging.Logger) Option {
	return func(d *Directory) {
		d.logger = l
	}
}

func WithAdminName(name string) Option {
	return func(d *Directory) {
		d.adminName = name
	}
}
