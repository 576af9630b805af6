package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/config"
	"github.com/dmitrijs2005/ftpaccounts/internal/cryptox"
	"github.com/dmitrijs2005/ftpaccounts/internal/dbx"
	"github.com/dmitrijs2005/ftpaccounts/internal/directory"
	"github.com/dmitrijs2005/ftpaccounts/internal/logging"
	"github.com/dmitrijs2005/ftpaccounts/internal/repositories/accounts"
	"github.com/spf13/afero"
)

// Test seams for the storage backends.
var (
	newFs    = afero.NewOsFs
	newS3API = func(ctx context.Context, o accounts.S3Options) (accounts.S3API, error) {
		return accounts.NewS3Client(ctx, o)
	}
	openPostgres = dbx.OpenPostgres
)

type App struct {
	config *config.Config
	logger logging.Logger
	hasher cryptox.PasswordHasher
	repo   accounts.Repository
	db     *sql.DB
	out    io.Writer
	reader *bufio.Reader
}

// NewApp wires the logger, password hasher and repository described by c.
// Command output goes to out, logs go to stderr.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}

	hasher, err := cryptox.NewPasswordHasher(c.Hasher)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidArgument, err)
	}

	app := &App{
		config: c,
		logger: logger,
		hasher: hasher,
		out:    out,
		reader: bufio.NewReader(os.Stdin),
	}

	app.repo, err = app.newRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return app, nil
}

func (a *App) newRepository(ctx context.Context) (accounts.Repository, error) {
	c := a.config

	switch c.Storage {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		return accounts.NewPostgresRepository(db), nil
	case config.StorageS3:
		client, err := newS3API(ctx, accounts.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return accounts.NewS3Repository(client, c.S3Bucket), nil
	case config.StorageFile, "":
		return accounts.NewFileRepository(newFs()), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage %q", common.ErrorInvalidArgument, c.Storage)
	}
}

// Close releases the storage connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("%w: no command", common.ErrorInvalidArgument)
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "hash":
		return a.hash()
	case "list", "l":
		return a.list(ctx)
	case "add":
		return a.add(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "check":
		return a.check(ctx, args)
	case "watch":
		return a.watch(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: unknown command %q", common.ErrorInvalidArgument, cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: accounts [flags] <command> [args]")
	fmt.Fprintln(a.out, "Available commands: hash, list, add <name> [home], delete <name>, check <name>, watch, version")
}

func (a *App) openDirectory(ctx context.Context) (*directory.Directory, error) {
	return directory.New(ctx, a.repo, a.config.UsersFile,
		directory.WithHasher(a.hasher),
		directory.WithLogger(a.logger),
		directory.WithAdminName(a.config.AdminName),
	)
}

// initSignalHandler cancels ctx on SIGINT, SIGTERM or SIGQUIT.
func (a *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}
