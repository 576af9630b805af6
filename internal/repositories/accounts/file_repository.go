package accounts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/filex"
	"github.com/dmitrijs2005/ftpaccounts/internal/models"
	"github.com/spf13/afero"
)

const documentPerm = 0o600

// FileRepository keeps the document in a file on an afero filesystem.
type FileRepository struct {
	fs afero.Fs
}

func NewFileRepository(fs afero.Fs) *FileRepository {
	return &FileRepository{fs: fs}
}

func (r *FileRepository) Stat(ctx context.Context, path string) (time.Time, error) {
	fi, err := r.fs.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w: %w", path, common.ErrorNotFound, err)
	}
	return fi.ModTime(), nil
}

func (r *FileRepository) Load(ctx context.Context, path string) (*Snapshot, error) {
	modTime, err := r.Stat(ctx, path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, common.ErrorNotFound, err)
	}

	accounts, err := models.DecodeAccounts(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return &Snapshot{Accounts: accounts, ModTime: modTime}, nil
}

func (r *FileRepository) Save(ctx context.Context, path string, account models.Account) (time.Time, error) {
	data, err := r.readExisting(path)
	if err != nil {
		return time.Time{}, err
	}

	out, err := mergeAccount(data, account)
	if err != nil {
		return time.Time{}, fmt.Errorf("save %s: %w", path, err)
	}

	return r.write(ctx, path, out)
}

func (r *FileRepository) Remove(ctx context.Context, path string, name string) (time.Time, error) {
	data, err := r.readExisting(path)
	if err != nil {
		return time.Time{}, err
	}
	if data == nil {
		return time.Time{}, fmt.Errorf("remove %s: %w", path, common.ErrorNotFound)
	}

	out, removed, err := removeAccount(data, name)
	if err != nil {
		return time.Time{}, fmt.Errorf("remove %s: %w", path, err)
	}
	if !removed {
		return r.Stat(ctx, path)
	}

	return r.write(ctx, path, out)
}

// readExisting returns nil data for a document that does not exist yet.
func (r *FileRepository) readExisting(path string) ([]byte, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (r *FileRepository) write(ctx context.Context, path string, data []byte) (time.Time, error) {
	if err := filex.WriteFileAtomic(r.fs, path, data, documentPerm); err != nil {
		return time.Time{}, err
	}
	return r.Stat(ctx, path)
}
