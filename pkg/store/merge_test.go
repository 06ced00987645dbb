package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptySources(t *testing.T) {
	_, err := Merge(MergeConfig{
		SourcePaths: []string{},
		DestPath:    filepath.Join(t.TempDir(), "dest.db"),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no source databases")
}

func TestMerge_NoDestination(t *testing.T) {
	_, err := Merge(MergeConfig{
		SourcePaths: []string{filepath.Join(t.TempDir(), "source.db")},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "destination path is required")
}

func writeSource(t *testing.T, path string, fixtures ...fixture) {
	t.Helper()
	s, err := NewSQLite(path)
	require.NoError(t, err)
	for _, f := range fixtures {
		f.save(t, s)
	}
	require.NoError(t, s.Close())
}

func TestMerge_Deduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	a := newFixture("11-22")
	b := newFixture("95-115")

	sourceA := filepath.Join(tmpDir, "a.db")
	sourceB := filepath.Join(tmpDir, "b.db")
	destPath := filepath.Join(tmpDir, "merged.db")

	writeSource(t, sourceA, a)
	writeSource(t, sourceB, a, b)

	stats, err := Merge(MergeConfig{
		SourcePaths: []string{sourceA, sourceB},
		DestPath:    destPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SourcesProcessed)
	assert.Equal(t, 2, stats.InputsMerged)
	assert.Equal(t, 1, stats.RulesMerged)
	assert.Equal(t, 2, stats.RunsMerged)
	assert.Equal(t, 4, stats.InvalidIDsMerged)

	merged, err := NewSQLite(destPath)
	require.NoError(t, err)
	defer merged.Close()

	runs, err := merged.GetRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	for _, f := range []fixture{a, b} {
		invalid, err := merged.GetInvalidIDs(f.run.ID)
		require.NoError(t, err)
		assert.Len(t, invalid, 2)
	}
}

func TestMerge_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	missing := filepath.Join(tmp, "missing.db")

	_, err := Merge(MergeConfig{
		SourcePaths: []string{missing},
		DestPath:    filepath.Join(tmp, "out.db"),
	})
	require.Error(t, err)

	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr), "merge must not create missing sources")
}
