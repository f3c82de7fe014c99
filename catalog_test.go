package sourcehold

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	cat, err := NewCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	sections := []SectionStats{
		{Name: "rules", Kind: "scope", Cells: 3, Distinct: 3},
		{Name: "heights", Kind: "diamond", Cells: 12, Distinct: 7},
	}
	require.NoError(t, cat.AddFile("/maps/a.aiv", "abc", 100, "example", sections))
	require.NoError(t, cat.AddFile("/maps/b.aiv", "abc", 100, "example", nil))

	paths, err := cat.FindBySHA1("abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"/maps/a.aiv", "/maps/b.aiv"}, paths)

	paths, err = cat.FindBySHA1("def")
	require.NoError(t, err)
	assert.Empty(t, paths)

	got, err := cat.Sections("/maps/a.aiv")
	require.NoError(t, err)
	assert.Equal(t, []SectionStats{sections[1], sections[0]}, got)

	// Re-adding a path replaces it and its sections
	require.NoError(t, cat.AddFile("/maps/a.aiv", "def", 50, "example", sections[:1]))
	got, err = cat.Sections("/maps/a.aiv")
	require.NoError(t, err)
	assert.Equal(t, sections[:1], got)

	n, err := cat.Files()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err = cat.Sections("/maps/missing.aiv")
	require.NoError(t, err)
	assert.Empty(t, got)
}
