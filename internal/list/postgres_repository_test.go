package list_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedlists/sharedlists/internal/database/dbtest"
	"github.com/sharedlists/sharedlists/internal/list"
)

func intPtr(i int) *int { return &i }

func TestPostgresRepository_ListPositions(t *testing.T) {
	pool := dbtest.Setup(t)
	repo := list.NewRepository(pool)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, pool, "tw-1", "alice")
	pageID := dbtest.CreatePage(t, pool, alice, "page")

	first := &list.List{PageID: pageID, Title: "first"}
	require.NoError(t, repo.CreateList(ctx, first, nil))
	assert.Equal(t, 0, first.Position)

	second := &list.List{PageID: pageID, Title: "second"}
	require.NoError(t, repo.CreateList(ctx, second, nil))
	assert.Equal(t, 1, second.Position)

	pinned := &list.List{PageID: pageID, Title: "pinned"}
	require.NoError(t, repo.CreateList(ctx, pinned, intPtr(0)))
	assert.Equal(t, 0, pinned.Position)

	lists, err := repo.ListsByPage(ctx, pageID)
	require.NoError(t, err)
	require.Len(t, lists, 3)
	// Ties on position fall back to creation order.
	assert.Equal(t, []uuid.UUID{first.ID, pinned.ID, second.ID}, []uuid.UUID{lists[0].ID, lists[1].ID, lists[2].ID})

	owner, err := repo.PageIDForList(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, pageID, owner)

	_, err = repo.PageIDForList(ctx, uuid.New())
	assert.ErrorIs(t, err, list.ErrListNotFound)
}

func TestPostgresRepository_ListUpdateDelete(t *testing.T) {
	pool := dbtest.Setup(t)
	repo := list.NewRepository(pool)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, pool, "tw-1", "alice")
	pageID := dbtest.CreatePage(t, pool, alice, "page")

	l := &list.List{PageID: pageID, Title: "todo"}
	require.NoError(t, repo.CreateList(ctx, l, nil))

	l.Title = "done"
	l.Position = 5
	require.NoError(t, repo.UpdateList(ctx, l))

	got, err := repo.GetList(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Title)
	assert.Equal(t, 5, got.Position)

	it := &list.Item{ListID: l.ID, Content: "milk"}
	require.NoError(t, repo.CreateItem(ctx, it, nil))

	require.NoError(t, repo.DeleteList(ctx, l.ID))
	_, err = repo.GetList(ctx, l.ID)
	assert.ErrorIs(t, err, list.ErrListNotFound)
	_, err = repo.GetItem(ctx, it.ID)
	assert.ErrorIs(t, err, list.ErrItemNotFound, "items cascade with their list")
	assert.ErrorIs(t, repo.DeleteList(ctx, l.ID), list.ErrListNotFound)
}

func TestPostgresRepository_Items(t *testing.T) {
	pool := dbtest.Setup(t)
	repo := list.NewRepository(pool)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, pool, "tw-1", "alice")
	pageID := dbtest.CreatePage(t, pool, alice, "page")

	l1 := &list.List{PageID: pageID, Title: "one"}
	require.NoError(t, repo.CreateList(ctx, l1, nil))
	l2 := &list.List{PageID: pageID, Title: "two"}
	require.NoError(t, repo.CreateList(ctx, l2, nil))

	a := &list.Item{ListID: l1.ID, Content: "a"}
	require.NoError(t, repo.CreateItem(ctx, a, nil))
	b := &list.Item{ListID: l1.ID, Content: "b"}
	require.NoError(t, repo.CreateItem(ctx, b, nil))
	c := &list.Item{ListID: l2.ID, Content: "c"}
	require.NoError(t, repo.CreateItem(ctx, c, nil))

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, 0, c.Position, "positions are per list")
	assert.False(t, a.Checked)

	a.Checked = true
	a.Content = "A"
	a.Position = 9
	require.NoError(t, repo.UpdateItem(ctx, a))

	items, err := repo.ItemsByList(ctx, l1.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
	assert.True(t, items[1].Checked)

	all, err := repo.ItemsByPage(ctx, pageID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.DeleteItem(ctx, b.ID))
	assert.ErrorIs(t, repo.DeleteItem(ctx, b.ID), list.ErrItemNotFound)
}
