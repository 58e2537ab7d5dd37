package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save("submissions/a.txt", strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	f, err := store.Open("submissions/a.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete("submissions/a.txt"))
	_, err = store.Open("submissions/a.txt")
	assert.Error(t, err)
}

func TestLocalStorageEnforcesLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("big.bin", strings.NewReader("0123456789"), 4)
	require.ErrorIs(t, err, ErrTooLarge)
	_, err = store.Open("big.bin")
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", strings.NewReader("x"), 0)
	assert.ErrorIs(t, err, ErrInvalidPath)
}
