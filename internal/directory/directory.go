// Package directory keeps the in-memory account directory used by the FTP
// host for authentication decisions.
//
// A Directory is loaded from a users document held by a repository. Before
// every read that must see the latest persisted state it compares the
// document's modification time with the one observed at load, at whole
// second resolution, and reloads the whole mapping when the document is
// newer. A write landing within the same second as the last load may go
// unnoticed until the document changes again.
//
// Mutations and reloads are serialized by one lock per Directory; reads of
// a fresh directory only share it.
package directory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/cryptox"
	"github.com/dmitrijs2005/ftpaccounts/internal/logging"
	"github.com/dmitrijs2005/ftpaccounts/internal/models"
	"github.com/dmitrijs2005/ftpaccounts/internal/repositories/accounts"
)

type Directory struct {
	repo   accounts.Repository
	hasher cryptox.PasswordHasher
	logger logging.Logger

	mu        sync.RWMutex
	accounts  map[string]models.Account
	adminName string
	source    string
	loadedAt  time.Time

	reloaded notifier
}

// New creates a directory and loads it from source.
func New(ctx context.Context, repo accounts.Repository, source string, opts ...Option) (*Directory, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", common.ErrorInvalidArgument)
	}

	d := &Directory{
		repo:      repo,
		hasher:    cryptox.NewSaltedHasher(),
		logger:    logging.Discard(),
		accounts:  map[string]models.Account{},
		adminName: DefaultAdminName,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.loadLocked(ctx, source); err != nil {
		return nil, err
	}
	return d, nil
}

// Source returns the path the directory was last loaded from.
func (d *Directory) Source() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.source
}

// Exists reports whether an account named name exists.
func (d *Directory) Exists(ctx context.Context, name string) (bool, error) {
	if err := d.refresh(ctx); err != nil {
		return false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.accounts[name]
	return ok, nil
}

// Get returns the account named name; ok is false if there is none.
func (d *Directory) Get(ctx context.Context, name string) (account models.Account, ok bool, err error) {
	if err := d.refresh(ctx); err != nil {
		return models.Account{}, false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok = d.accounts[name]
	return account, ok, nil
}

// ListNames returns the names of all accounts, sorted.
func (d *Directory) ListNames(ctx context.Context) ([]string, error) {
	if err := d.refresh(ctx); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Sorted(maps.Keys(d.accounts)), nil
}

// Save inserts or replaces account, in the document first and then in
// memory. A failed save may leave the document and the directory out of
// step; Reload resynchronizes them.
func (d *Directory) Save(ctx context.Context, account models.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.syncLocked(ctx); err != nil {
		return err
	}

	modTime, err := d.repo.Save(ctx, d.source, account)
	if err != nil {
		return fmt.Errorf("save account %q: %w", account.Name, err)
	}

	d.accounts[account.Name] = account
	d.loadedAt = modTime

	d.logger.Info(ctx, "account saved", "user", account.Name, "path", d.source)
	return nil
}

// Delete removes the account named name. Deleting an absent account is a
// no-op.
func (d *Directory) Delete(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.syncLocked(ctx); err != nil {
		return err
	}

	if _, ok := d.accounts[name]; !ok {
		return nil
	}

	modTime, err := d.repo.Remove(ctx, d.source, name)
	if err != nil {
		return fmt.Errorf("delete account %q: %w", name, err)
	}

	delete(d.accounts, name)
	d.loadedAt = modTime

	d.logger.Info(ctx, "account deleted", "user", name, "path", d.source)
	return nil
}

func (d *Directory) AdminName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.adminName
}

func (d *Directory) SetAdminName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adminName = name
}

// IsAdmin reports whether name is the admin designation. The admin does not
// need to be an account of the directory.
func (d *Directory) IsAdmin(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return name == d.adminName
}

// OnReload registers fn to be called after every successful reload or
// replacement of the mapping. fn runs while the directory is locked and must
// not call back into it. The returned function unregisters fn.
func (d *Directory) OnReload(fn func()) (cancel func()) {
	return d.reloaded.subscribe(fn)
}

// Reload replaces the mapping with the current content of the source.
func (d *Directory) Reload(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked(ctx, d.source)
}

// LoadFrom loads the directory from path and adopts it as the source. An
// empty path reloads the current source.
func (d *Directory) LoadFrom(ctx context.Context, path string) error {
	if path == "" {
		return d.Reload(ctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked(ctx, path)
}

// Replace swaps the mapping for accounts without touching the document. The
// source and its load timestamp are kept, so the replacement holds until
// the document changes.
func (d *Directory) Replace(ctx context.Context, accounts map[string]models.Account) error {
	if accounts == nil {
		return fmt.Errorf("%w: nil accounts", common.ErrorInvalidArgument)
	}

	next := make(map[string]models.Account, len(accounts))
	for key, a := range accounts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: account %q: %v", common.ErrorInvalidArgument, key, err)
		}
		if a.Name != key {
			return fmt.Errorf("%w: account %q is stored under key %q", common.ErrorInvalidArgument, a.Name, key)
		}
		next[key] = a
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.accounts = next
	d.logger.Info(ctx, "accounts replaced", "accounts", len(next))
	d.reloaded.fire()
	return nil
}

// ReplaceJSON is Replace for a raw users document, which must be a JSON
// object.
func (d *Directory) ReplaceJSON(ctx context.Context, data []byte) error {
	accounts, err := models.DecodeAccounts(data)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidArgument, err)
	}
	return d.Replace(ctx, accounts)
}

// Refresh reloads the directory if the source changed since the last load.
func (d *Directory) Refresh(ctx context.Context) error {
	return d.refresh(ctx)
}

func (d *Directory) refresh(ctx context.Context) error {
	d.mu.RLock()
	source, loadedAt := d.source, d.loadedAt
	d.mu.RUnlock()

	modTime, err := d.repo.Stat(ctx, source)
	if err != nil {
		return err
	}
	if !isNewer(modTime, loadedAt) {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// another caller may have reloaded or switched the source meanwhile
	if d.source != source || !isNewer(modTime, d.loadedAt) {
		return nil
	}

	d.logger.Debug(ctx, "accounts document changed", "path", source, "modified", modTime)
	return d.loadLocked(ctx, source)
}

// syncLocked reloads a stale directory before a mutation. A missing
// document is left for the mutation to recreate.
func (d *Directory) syncLocked(ctx context.Context) error {
	modTime, err := d.repo.Stat(ctx, d.source)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if !isNewer(modTime, d.loadedAt) {
		return nil
	}
	return d.loadLocked(ctx, d.source)
}

func (d *Directory) loadLocked(ctx context.Context, path string) error {
	snap, err := d.repo.Load(ctx, path)
	if err != nil {
		return err
	}

	next := snap.Accounts
	if next == nil {
		next = map[string]models.Account{}
	}

	d.accounts = next
	d.source = path
	d.loadedAt = snap.ModTime

	d.logger.Info(ctx, "accounts loaded", "path", path, "accounts", len(next))
	d.reloaded.fire()
	return nil
}

// isNewer compares at whole seconds, the resolution of many filesystems.
func isNewer(disk, loaded time.Time) bool {
	return disk.Unix() > loaded.Unix()
}
