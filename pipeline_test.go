package sourcehold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/sourcehold/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, b []byte) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string][]byte{
		"one.aiv":          b,
		"sub/two.AIV":      b,
		"sub/notes.txt":    []byte("ignored"),
		".hidden/four.aiv": b,
		"broken.aiv":       b[:10],
	}
	for name, data := range files {
		file := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
		require.NoError(t, os.WriteFile(file, data, 0o644))
	}
	return dir
}

func TestScan(t *testing.T) {
	c := newConverter(t)
	dir := populate(t, fixture(t))

	cat, err := NewCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	require.NoError(t, c.Scan(dir, cat))

	n, err := cat.Files()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sections, err := cat.Sections(filepath.Join(dir, "sub", "two.AIV"))
	require.NoError(t, err)
	assert.Len(t, sections, 3)

	sections, err = cat.Sections(filepath.Join(dir, ".hidden", "four.aiv"))
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestConvertDir(t *testing.T) {
	c := newConverter(t)
	b := fixture(t)
	in := populate(t, b)
	require.NoError(t, os.Remove(filepath.Join(in, "broken.aiv")))
	out := t.TempDir()

	require.NoError(t, c.ConvertDir(in, out, document.Options{MirrorColumns: true}))

	for _, name := range []string{"one.json", filepath.Join("sub", "two.json")} {
		text, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)

		got, err := c.EncodeFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, b, got, name)
		assert.Contains(t, string(text), `"mirror_columns": true`)
	}

	_, err := os.Stat(filepath.Join(out, ".hidden"))
	assert.True(t, os.IsNotExist(err))

	// A file that fails to decode stops the conversion
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.aiv"), b[:10], 0o644))
	err = c.ConvertDir(in, out, document.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.aiv")
}

func TestWaitForPipeline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ok := make(chan error)
	failed := make(chan error, 1)
	boom := errors.New("boom")
	failed <- boom
	close(failed)

	// The stage that succeeds only finishes once the pipeline is cancelled
	go func() {
		defer close(ok)
		<-ctx.Done()
		ok <- errors.New("cancelled")
	}()

	assert.Equal(t, boom, waitForPipeline(cancel, ok, failed))
	assert.Error(t, ctx.Err())

	empty := make(chan error)
	close(empty)
	assert.NoError(t, waitForPipeline(func() {}, empty))
}
