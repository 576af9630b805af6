// Package models holds the account record persisted in the users document
// and the codec for the document itself.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Account is one FTP user. Zero limits mean unlimited.
type Account struct {
	Name           string `json:"name" validate:"required"`
	Password       string `json:"password"`
	HomeDirectory  string `json:"homeDirectory"`
	Enabled        bool   `json:"isEnabled"`
	CanWrite       bool   `json:"canWrite"`
	MaxLogins      int    `json:"maxLogin" validate:"gte=0"`
	MaxLoginsPerIP int    `json:"maxLoginPerIp" validate:"gte=0"`
	DownloadRate   int    `json:"downloadRate" validate:"gte=0"`
	UploadRate     int    `json:"uploadRate" validate:"gte=0"`
	MaxIdleTime    int    `json:"maxIdleTime" validate:"gte=0"`
}

// NewAccount returns an account named name with the document defaults
// applied: disabled, writable, no limits.
func NewAccount(name string) Account {
	return Account{Name: name, CanWrite: true}
}

// UnmarshalJSON applies defaults for fields missing from the document.
// canWrite is the only field whose default is not the zero value.
func (a *Account) UnmarshalJSON(b []byte) error {
	type plain Account
	aux := struct {
		*plain
		CanWrite *bool `json:"canWrite"`
	}{plain: (*plain)(a)}

	*a = Account{}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	a.CanWrite = aux.CanWrite == nil || *aux.CanWrite
	return nil
}

// Validate checks the account against its struct tags.
func (a Account) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorInvalidRecord, formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Sprintf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err.Error()
}
