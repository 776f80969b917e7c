package repo

import (
	"context"
	"testing"

	dom "todoapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestMemoryTodoRepo_CompletionLatch(t *testing.T) {
	t.Parallel()
	r := NewMemoryTodoRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, dom.Todo{UserID: 1, Title: "Buy milk"})
	require.NoError(t, err)
	require.Nil(t, created.DateCompleted)

	first, err := r.MarkCompleted(ctx, 1, created.ID)
	require.NoError(t, err)
	require.NotNil(t, first.DateCompleted)

	second, err := r.MarkCompleted(ctx, 1, created.ID)
	require.NoError(t, err)
	require.True(t, first.DateCompleted.Equal(*second.DateCompleted))
}

func TestMemoryTodoRepo_OwnerScoping(t *testing.T) {
	t.Parallel()
	r := NewMemoryTodoRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, dom.Todo{UserID: 1, Title: "Buy milk"})
	require.NoError(t, err)

	_, err = r.GetByID(ctx, 2, created.ID)
	require.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = r.MarkCompleted(ctx, 2, created.ID)
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.ErrorIs(t, r.Delete(ctx, 2, created.ID), pgx.ErrNoRows)
}
