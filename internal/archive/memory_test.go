package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	location, err := store.Save(ctx, "example.com/privacy-policy", "text/html", []byte("policy text"))
	require.NoError(t, err)
	assert.Equal(t, "mem://example.com/privacy-policy", location)

	body, err := store.Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, []byte("policy text"), body)

	_, err = store.Read(ctx, "mem://missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CopiesBody(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	body := []byte("original")

	location, err := store.Save(ctx, "k", "", body)
	require.NoError(t, err)

	body[0] = 'X'

	stored, err := store.Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), stored)
}
