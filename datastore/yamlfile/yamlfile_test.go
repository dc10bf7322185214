/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/flagstore/datastore"
	"github.com/suparena/flagstore/storagemodels"
)

var (
	_ datastore.ReadWriteStore = (*Store)(nil)
	_ datastore.ReadOnlyStore  = (*Store)(nil)
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open("local", filepath.Join(t.TempDir(), "overrides.yaml"))
	require.NoError(t, err)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSetPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "overrides.yaml")

	s, err := Open("local", path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "dark_mode", storagemodels.Bool(true)))
	require.NoError(t, s.Set(ctx, "theme", storagemodels.String("dark")))
	require.NoError(t, s.Remove(ctx, "theme"))
	require.NoError(t, s.Remove(ctx, "never_set"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dark_mode: true\n", string(raw))

	reopened, err := Open("local", path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "dark_mode")
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Bool(true), v)

	v, err = reopened.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestOpenRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: [1, 2]\n"), 0644))

	_, err := Open("local", path)
	assert.Error(t, err)
}
