// Package accounts persists the users document. A document is addressed by
// a path (a file path or an object key) and read and written as a whole.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/models"
)

// Snapshot is the decoded document together with the modification time
// observed before it was read.
type Snapshot struct {
	Accounts map[string]models.Account
	ModTime  time.Time
}

type Repository interface {
	// Load reads and decodes the document at path.
	Load(ctx context.Context, path string) (*Snapshot, error)

	// Save inserts or replaces one account in the document at path,
	// creating the document if needed, and returns its new modification
	// time.
	Save(ctx context.Context, path string, account models.Account) (time.Time, error)

	// Remove deletes one account from the document at path. Removing an
	// absent account is not an error.
	Remove(ctx context.Context, path string, name string) (time.Time, error)

	// Stat returns the modification time of the document at path.
	Stat(ctx context.Context, path string) (time.Time, error)
}

// mergeAccount returns data with account inserted under its name. Entries
// other than the merged one are kept as stored.
func mergeAccount(data []byte, account models.Account) ([]byte, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}

	raw, err := decodeOrEmpty(data)
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("encode account %q: %w", account.Name, err)
	}
	raw[account.Name] = value

	return models.EncodeDocument(raw)
}

// removeAccount returns data without the entry for name and whether the
// entry was present.
func removeAccount(data []byte, name string) ([]byte, bool, error) {
	raw, err := decodeOrEmpty(data)
	if err != nil {
		return nil, false, err
	}

	if _, ok := raw[name]; !ok {
		return data, false, nil
	}
	delete(raw, name)

	out, err := models.EncodeDocument(raw)
	return out, true, err
}

func decodeOrEmpty(data []byte) (map[string]json.RawMessage, error) {
	if data == nil {
		return map[string]json.RawMessage{}, nil
	}
	raw, err := models.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}
