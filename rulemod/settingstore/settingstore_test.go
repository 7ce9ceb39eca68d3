package settingstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemSettingsStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemSettingsStore()
	s.Values["superuser-comment-prefix"] = "!remove"

	vals, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal("!remove", vals["superuser-comment-prefix"])

	// callers get a copy, not the live map
	vals["superuser-comment-prefix"] = "mutated"
	again, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal("!remove", again["superuser-comment-prefix"])
}

func TestFileSettingsStoreReloads(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"superuser-points-threshold": "100"}`), 0644))

	s := NewFileSettingsStore(p)
	vals, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal("100", vals["superuser-points-threshold"])

	// edits on disk are visible on the next fetch, no restart needed
	require.NoError(t, os.WriteFile(p, []byte(`{"superuser-points-threshold": "250"}`), 0644))
	vals, err = s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal("250", vals["superuser-points-threshold"])

	_, err = NewFileSettingsStore(filepath.Join(t.TempDir(), "missing.json")).GetAll(ctx)
	assert.Error(err)
}
