package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndDuplicate(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("1"))
	assert.True(t, s.Has("1"))

	err := s.Create("1")
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestFieldAccess(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("1"))

	_, err := s.GetField("1", "purpose")
	assert.ErrorIs(t, err, ErrMissingField)

	require.NoError(t, s.SetField("1", "purpose", "baseline"))
	val, err := s.GetField("1", "purpose")
	require.NoError(t, err)
	assert.Equal(t, "baseline", val)

	// Upsert semantics: overwrite existing field
	require.NoError(t, s.SetField("1", "purpose", "ablation"))
	val, err = s.GetField("1", "purpose")
	require.NoError(t, err)
	assert.Equal(t, "ablation", val)

	err = s.SetField("missing", "purpose", "x")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = s.GetField("missing", "purpose")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRemove(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("1"))
	require.NoError(t, s.Create("2"))

	require.NoError(t, s.Remove("1"))
	assert.False(t, s.Has("1"))
	assert.Equal(t, []string{"2"}, s.Keys())

	err := s.Remove("1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeysInsertionOrder(t *testing.T) {
	s := New()
	for _, key := range []string{"summary", "1", "2", "10"} {
		require.NoError(t, s.Create(key))
	}
	assert.Equal(t, []string{"summary", "1", "2", "10"}, s.Keys())
	assert.Equal(t, 4, s.Len())
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocol.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	s, err := Load(path)
	assert.ErrorIs(t, err, ErrCorruptState)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocol.json")

	s := New()
	require.NoError(t, s.Create("1"))
	require.NoError(t, s.SetField("1", "purpose", "baseline"))
	require.NoError(t, s.SetField("1", "num_seeds", 5))
	require.NoError(t, s.SetField("1", "loaded_config", []any{map[string]any{"lr": 0.1}}))
	require.NoError(t, s.Create("summary"))
	require.NoError(t, s.SetField("summary", "time", []string{"01/02/24 10:00"}))
	require.NoError(t, s.Create("2"))
	require.NoError(t, s.SetField("2", "purpose", "ablation"))

	require.NoError(t, s.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, s.Keys(), loaded.Keys())
	val, err := loaded.GetField("1", "purpose")
	require.NoError(t, err)
	assert.Equal(t, "baseline", val)
	seeds, err := loaded.GetField("1", "num_seeds")
	require.NoError(t, err)
	assert.EqualValues(t, 5, seeds)
	val, err = loaded.GetField("2", "purpose")
	require.NoError(t, err)
	assert.Equal(t, "ablation", val)
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "protocol.json")

	s := New()
	require.NoError(t, s.Create("1"))
	require.NoError(t, s.Save(path))
	require.NoError(t, s.Create("2"))
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, loaded.Keys())

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
