package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/config"
	"github.com/dmitrijs2005/ftpaccounts/internal/cryptox"
	"github.com/dmitrijs2005/ftpaccounts/internal/repositories/accounts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readUsers(t *testing.T, fs afero.Fs) map[string]map[string]any {
	t.Helper()
	data, err := afero.ReadFile(fs, usersPath)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func TestNewApp_Errors(t *testing.T) {
	ctx := context.Background()

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.Hasher = "md5"
	_, err := NewApp(ctx, &cfg, &syncBuffer{})
	require.ErrorIs(t, err, common.ErrorInvalidArgument)

	cfg.LoadDefaults()
	cfg.Storage = "ftp"
	_, err = NewApp(ctx, &cfg, &syncBuffer{})
	require.ErrorIs(t, err, common.ErrorInvalidArgument)

	cfg.LoadDefaults()
	cfg.LogFormat = "xml"
	_, err = NewApp(ctx, &cfg, &syncBuffer{})
	require.Error(t, err)
}

type offlineS3 struct{}

var errOffline = errors.New("offline")

func (offlineS3) HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return nil, errOffline
}

func (offlineS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errOffline
}

func (offlineS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return nil, errOffline
}

func TestNewApp_S3Storage(t *testing.T) {
	old := newS3API
	t.Cleanup(func() { newS3API = old })

	var got accounts.S3Options
	newS3API = func(ctx context.Context, o accounts.S3Options) (accounts.S3API, error) {
		got = o
		return offlineS3{}, nil
	}

	app, _ := newTestApp(t, afero.NewMemMapFs(), func(c *config.Config) {
		c.Storage = config.StorageS3
		c.S3RootUser = "user"
		c.S3RootPassword = "password"
		c.S3Region = "us-west-1"
		c.S3BaseEndpoint = "http://minio:9000"
	})

	assert.Equal(t, accounts.S3Options{
		Region:       "us-west-1",
		AccessKey:    "user",
		SecretKey:    "password",
		BaseEndpoint: "http://minio:9000",
	}, got)

	err := app.Run(context.Background(), []string{"list"})
	require.ErrorIs(t, err, errOffline)
}

func TestNewApp_S3ClientError(t *testing.T) {
	old := newS3API
	t.Cleanup(func() { newS3API = old })
	newS3API = func(context.Context, accounts.S3Options) (accounts.S3API, error) {
		return nil, errOffline
	}

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.Storage = config.StorageS3

	_, err := NewApp(context.Background(), &cfg, &syncBuffer{})
	require.ErrorIs(t, err, errOffline)
}

func TestRun_UnknownCommand(t *testing.T) {
	app, out := newTestApp(t, afero.NewMemMapFs(), nil)
	ctx := context.Background()

	require.ErrorIs(t, app.Run(ctx, nil), common.ErrorInvalidArgument)
	require.ErrorIs(t, app.Run(ctx, []string{"frobnicate"}), common.ErrorInvalidArgument)
	assert.Contains(t, out.String(), "Available commands")

	require.NoError(t, app.Run(ctx, []string{"help"}))
}

func TestRun_Hash(t *testing.T) {
	app, out := newTestApp(t, afero.NewMemMapFs(), nil)

	require.NoError(t, app.Run(context.Background(), []string{"hash"}))

	digest := lastLine(out.String())
	assert.True(t, cryptox.NewSaltedHasher().Verify("secret", digest), digest)
}

func TestRun_HashArgon2(t *testing.T) {
	app, out := newTestApp(t, afero.NewMemMapFs(), func(c *config.Config) { c.Hasher = "argon2" })

	require.NoError(t, app.Run(context.Background(), []string{"hash"}))

	digest := lastLine(out.String())
	assert.True(t, cryptox.NewArgon2Hasher().Verify("secret", digest), digest)
}

func TestRun_PasswordReadError(t *testing.T) {
	app, _ := newTestApp(t, afero.NewMemMapFs(), nil)
	readPassword = func(int) ([]byte, error) { return nil, errors.New("no tty") }

	require.Error(t, app.Run(context.Background(), []string{"hash"}))
	require.Error(t, app.Run(context.Background(), []string{"add", "alice", "/srv/alice"}))
}

func TestRun_AddCreatesDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, out := newTestApp(t, fs, nil)

	require.NoError(t, app.Run(context.Background(), []string{"add", "alice", "/srv/alice"}))
	assert.Contains(t, out.String(), "Account 'alice' saved")

	doc := readUsers(t, fs)
	require.Contains(t, doc, "alice")
	assert.Equal(t, "/srv/alice", doc["alice"]["homeDirectory"])
	assert.Equal(t, true, doc["alice"]["isEnabled"])
	assert.Equal(t, true, doc["alice"]["canWrite"])
	assert.True(t, cryptox.NewSaltedHasher().Verify("secret", doc["alice"]["password"].(string)))
}

func TestRun_AddToExistingDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, _ := newTestApp(t, fs, nil)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "alice", "/srv/alice"}))
	require.NoError(t, app.Run(ctx, []string{"add", "bob", "/srv/bob"}))

	doc := readUsers(t, fs)
	assert.Contains(t, doc, "alice")
	assert.Contains(t, doc, "bob")
}

func TestRun_AddPromptsForHome(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, out := newTestApp(t, fs, nil)
	app.reader = bufio.NewReader(strings.NewReader("/srv/bob\n"))

	require.NoError(t, app.Run(context.Background(), []string{"add", "bob"}))
	assert.Contains(t, out.String(), "Home directory")
	assert.Equal(t, "/srv/bob", readUsers(t, fs)["bob"]["homeDirectory"])
}

func TestRun_ArgumentErrors(t *testing.T) {
	app, _ := newTestApp(t, afero.NewMemMapFs(), nil)
	ctx := context.Background()

	for _, args := range [][]string{
		{"add"},
		{"add", "a", "b", "c"},
		{"delete"},
		{"delete", "a", "b"},
		{"check"},
	} {
		require.ErrorIs(t, app.Run(ctx, args), common.ErrorInvalidArgument, args)
	}
}

func TestRun_List(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, out := newTestApp(t, fs, func(c *config.Config) { c.AdminName = "bob" })
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "alice", "/srv/alice"}))
	require.NoError(t, app.Run(ctx, []string{"add", "bob", "/srv/bob"}))
	require.NoError(t, app.Run(ctx, []string{"list"}))

	s := out.String()
	assert.Regexp(t, `Name\s+Enabled\s+Write\s+Admin\s+Home`, s)
	assert.Regexp(t, `alice\s+yes\s+yes\s+no\s+/srv/alice`, s)
	assert.Regexp(t, `bob\s+yes\s+yes\s+yes\s+/srv/bob`, s)
	assert.Contains(t, s, "2 account(s)")
}

func TestRun_ListAlignsLongNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, out := newTestApp(t, fs, nil)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "a", "/srv/a"}))
	require.NoError(t, app.Run(ctx, []string{"add", "averyveryverylongaccountname", "/srv/b"}))
	require.NoError(t, app.Run(ctx, []string{"list"}))

	var offsets []int
	for _, line := range strings.Split(out.String(), "\n") {
		if i := strings.Index(line, "/srv/"); i >= 0 {
			offsets = append(offsets, i)
		}
	}

	require.Len(t, offsets, 2)
	assert.Equal(t, offsets[0], offsets[1], "home column must line up:\n%s", out.String())
}

func TestRun_ListMissingDocument(t *testing.T) {
	app, _ := newTestApp(t, afero.NewMemMapFs(), nil)

	require.ErrorIs(t, app.Run(context.Background(), []string{"list"}), common.ErrorNotFound)
}

func TestRun_Delete(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, out := newTestApp(t, fs, nil)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "alice", "/srv/alice"}))
	require.NoError(t, app.Run(ctx, []string{"delete", "alice"}))
	assert.Contains(t, out.String(), "Account 'alice' deleted")
	assert.NotContains(t, readUsers(t, fs), "alice")

	require.ErrorIs(t, app.Run(ctx, []string{"delete", "alice"}), common.ErrorNotFound)
}

func TestRun_Check(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, out := newTestApp(t, fs, nil)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "alice", "/srv/alice"}))

	require.NoError(t, app.Run(ctx, []string{"check", "alice"}))
	assert.Contains(t, out.String(), "Authenticated 'alice': home=/srv/alice enabled=yes write=yes admin=no")

	stubPassword(t, "wrong")
	require.ErrorIs(t, app.Run(ctx, []string{"check", "alice"}), common.ErrorAuthenticationFailed)
	assert.Contains(t, out.String(), "Authentication of 'alice' failed")

	require.ErrorIs(t, app.Run(ctx, []string{"check", "nobody"}), common.ErrorAuthenticationFailed)
}

func TestRun_CheckAnonymous(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, _ := newTestApp(t, fs, nil)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "alice", "/srv/alice"}))

	readPassword = func(int) ([]byte, error) {
		t.Fatal("anonymous check must not ask for a password")
		return nil, nil
	}
	require.ErrorIs(t, app.Run(ctx, []string{"check", "anonymous"}), common.ErrorAuthenticationFailed)

	stubPassword(t, "")
	require.NoError(t, app.Run(ctx, []string{"add", "anonymous", "/srv/pub"}))

	readPassword = func(int) ([]byte, error) {
		t.Fatal("anonymous check must not ask for a password")
		return nil, nil
	}
	require.NoError(t, app.Run(ctx, []string{"check", "anonymous"}))
}

func TestRun_CheckArgon2(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, _ := newTestApp(t, fs, func(c *config.Config) { c.Hasher = "argon2" })
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"add", "alice", "/srv/alice"}))
	require.NoError(t, app.Run(ctx, []string{"check", "alice"}))
}

func TestNewApp_PostgresStorage(t *testing.T) {
	old := openPostgres
	t.Cleanup(func() { openPostgres = old })

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	var gotDSN string
	openPostgres = func(ctx context.Context, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, nil
	}

	app, out := newTestApp(t, afero.NewMemMapFs(), func(c *config.Config) {
		c.Storage = config.StoragePostgres
		c.DatabaseDSN = "postgres://ftp@db/ftp"
	})
	assert.Equal(t, "postgres://ftp@db/ftp", gotDSN)

	stored := `{"alice": {"name": "alice", "homeDirectory": "/srv/alice", "isEnabled": true}}`
	mock.ExpectQuery(`SELECT\s+document,\s*modified_at\s+FROM\s+account_documents`).
		WithArgs(usersPath).
		WillReturnRows(sqlmock.NewRows([]string{"document", "modified_at"}).AddRow(stored, time.Now()))
	mock.ExpectQuery(`SELECT\s+modified_at\s+FROM\s+account_documents`).
		WithArgs(usersPath).
		WillReturnRows(sqlmock.NewRows([]string{"modified_at"}).AddRow(time.Now().Add(-time.Hour)))
	mock.ExpectQuery(`SELECT\s+modified_at\s+FROM\s+account_documents`).
		WithArgs(usersPath).
		WillReturnRows(sqlmock.NewRows([]string{"modified_at"}).AddRow(time.Now().Add(-time.Hour)))
	mock.ExpectClose()

	require.NoError(t, app.Run(context.Background(), []string{"list"}))
	assert.Contains(t, out.String(), "alice")

	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_PostgresError(t *testing.T) {
	old := openPostgres
	t.Cleanup(func() { openPostgres = old })
	openPostgres = func(context.Context, string) (*sql.DB, error) {
		return nil, errOffline
	}

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.Storage = config.StoragePostgres

	_, err := NewApp(context.Background(), &cfg, &syncBuffer{})
	require.ErrorIs(t, err, errOffline)
}

func TestApp_CloseWithoutDatabase(t *testing.T) {
	app, _ := newTestApp(t, afero.NewMemMapFs(), nil)
	require.NoError(t, app.Close())
}
