package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/infrastructure/storage"
)

func TestLocal_PutYDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocal(dir, "/files/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Put(ctx, "guias/DSP-1/abc.pdf", "application/pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "/files/guias/DSP-1/abc.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "guias", "DSP-1", "abc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, s.Delete(ctx, "guias/DSP-1/abc.pdf"))
	_, err = os.Stat(filepath.Join(dir, "guias", "DSP-1", "abc.pdf"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Delete(ctx, "guias/DSP-1/abc.pdf"), "borrar dos veces no falla")
}

func TestLocal_RechazaRutasFueraDelDirectorio(t *testing.T) {
	s, err := storage.NewLocal(t.TempDir(), "/files")
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "../fuera.txt", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)
}
