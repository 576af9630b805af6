package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
)

const documentIndent = "    "

// DecodeDocument splits a users document into its raw entries. The
// top-level value must be a JSON object.
func DecodeDocument(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", common.ErrorInvalidFormat)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidFormat, err)
	}
	return raw, nil
}

// DecodeAccounts parses a whole users document. Every entry must be an
// account whose name equals its key.
func DecodeAccounts(data []byte) (map[string]Account, error) {
	raw, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]Account, len(raw))
	for key, value := range raw {
		var a Account
		if err := json.Unmarshal(value, &a); err != nil {
			return nil, fmt.Errorf("%w: account %q: %v", common.ErrorInvalidFormat, key, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%w: account %q: %v", common.ErrorInvalidFormat, key, err)
		}
		if a.Name != key {
			return nil, fmt.Errorf("%w: account %q is stored under key %q", common.ErrorInvalidFormat, a.Name, key)
		}
		accounts[key] = a
	}

	return accounts, nil
}

// EncodeDocument writes raw entries as a pretty-printed document with
// sorted keys.
func EncodeDocument(raw map[string]json.RawMessage) ([]byte, error) {
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return json.MarshalIndent(raw, "", documentIndent)
}

// EncodeAccounts writes accounts as a pretty-printed document.
func EncodeAccounts(accounts map[string]Account) ([]byte, error) {
	if accounts == nil {
		accounts = map[string]Account{}
	}
	return json.MarshalIndent(accounts, "", documentIndent)
}
