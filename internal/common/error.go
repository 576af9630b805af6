// Package common defines sentinel errors and small helpers shared by the
// account directory, its repositories and the admin CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorInvalidFormat = errors.New("invalid format")

	// Directory-level errors.
	ErrorInvalidRecord   = errors.New("invalid record")
	ErrorInvalidArgument = errors.New("invalid argument")

	// Auth errors. A failed authentication never says whether the account
	// exists.
	ErrorAuthenticationFailed      = errors.New("authentication failed")
	ErrorUnsupportedAuthentication = errors.New("authentication not supported")
)
