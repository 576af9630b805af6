package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/ftpaccounts/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const usersPath = "/etc/ftp/users.json"

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func stubPassword(t *testing.T, password string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		return []byte(password), nil
	}
}

func useFs(t *testing.T, fs afero.Fs) {
	t.Helper()
	old := newFs
	t.Cleanup(func() { newFs = old })
	newFs = func() afero.Fs { return fs }
}

// newTestApp builds an App over fs with default settings adjusted by
// mutate. Passwords read from the terminal are "secret".
func newTestApp(t *testing.T, fs afero.Fs, mutate func(c *config.Config)) (*App, *syncBuffer) {
	t.Helper()
	useFs(t, fs)
	stubPassword(t, "secret")

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.UsersFile = usersPath
	cfg.LogLevel = "error"
	if mutate != nil {
		mutate(&cfg)
	}

	out := &syncBuffer{}
	app, err := NewApp(context.Background(), &cfg, out)
	require.NoError(t, err)
	app.reader = bufio.NewReader(strings.NewReader(""))

	return app, out
}
