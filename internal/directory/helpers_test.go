package directory

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/repositories/accounts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	usersPath = "/etc/ftp/users.json"

	// "test" hashed with the legacy salted scheme
	testDigest = "4221747:D40D331DC793710D56B5ED167F5F3B1A"
)

// loadTime is the modification time of the document when a test directory
// is created.
var loadTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func usersDoc(names ...string) map[string]any {
	doc := map[string]any{}
	for _, n := range names {
		doc[n] = map[string]any{
			"name":          n,
			"password":      testDigest,
			"homeDirectory": "/tmp",
		}
	}
	return doc
}

func writeDoc(t *testing.T, fs afero.Fs, path string, doc any, mtime time.Time) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "    ")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, data, 0o600))
	require.NoError(t, fs.Chtimes(path, mtime, mtime))
}

func readDoc(t *testing.T, fs afero.Fs, path string) map[string]map[string]any {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

// newTestDirectory creates a directory over an in-memory filesystem holding
// the "test" account, and counts its reload notifications.
func newTestDirectory(t *testing.T, opts ...Option) (*Directory, afero.Fs, *atomic.Int32) {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeDoc(t, fs, usersPath, usersDoc("test"), loadTime)

	d, err := New(context.Background(), accounts.NewFileRepository(fs), usersPath, opts...)
	require.NoError(t, err)

	var reloads atomic.Int32
	d.OnReload(func() { reloads.Add(1) })

	return d, fs, &reloads
}
