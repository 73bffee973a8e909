package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooladmin/internal/config"
	"schooladmin/internal/docstore"
)

func TestOpenDocumentsSQLite(t *testing.T) {
	ctx := context.Background()
	docs, err := OpenDocuments(ctx, config.App{StoreBackend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "data", "school.db")})
	require.NoError(t, err)
	defer docs.Close()
	assert.True(t, docs.Healthy(ctx))

	id, err := docs.Create(ctx, "students", docstore.Document{"name": "Asha"})
	require.NoError(t, err)
	require.NoError(t, docs.Update(ctx, "students", id, docstore.Set("fees.April.paid", 500)))

	got, err := docs.Get(ctx, "students", id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got["name"])
	assert.Equal(t, map[string]any{"paid": float64(500)}, got["fees"].(map[string]any)["April"])
}

func TestOpenDocumentsUnknown(t *testing.T) {
	_, err := OpenDocuments(context.Background(), config.App{StoreBackend: "dynamo"})
	assert.Error(t, err)
}
