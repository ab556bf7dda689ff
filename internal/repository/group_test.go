package repository

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	cats := &models.Group{Title: "Cats", Slug: "cats", Description: "meow"}
	require.NoError(t, repo.Create(ctx, cats))
	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Birds", Slug: "birds"}))

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		err := repo.Create(ctx, &models.Group{Title: "Other cats", Slug: "cats"})
		assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)
	})

	t.Run("get by slug and id", func(t *testing.T) {
		got, err := repo.GetBySlug(ctx, "cats")
		require.NoError(t, err)
		assert.Equal(t, cats.ID, got.ID)

		got, err = repo.GetByID(ctx, cats.ID)
		require.NoError(t, err)
		assert.Equal(t, "meow", got.Description)

		_, err = repo.GetBySlug(ctx, "missing-slug")
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	t.Run("list sorted by title", func(t *testing.T) {
		groups, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "Birds", groups[0].Title)
	})

	t.Run("update", func(t *testing.T) {
		cats.Title = "Cats!"
		cats.Description = ""
		require.NoError(t, repo.Update(ctx, cats))
		got, err := repo.GetBySlug(ctx, "cats")
		require.NoError(t, err)
		assert.Equal(t, "Cats!", got.Title)
		assert.Empty(t, got.Description)

		clash := &models.Group{ID: cats.ID, Title: "Cats", Slug: "birds"}
		assert.True(t, models.HasCode(repo.Update(ctx, clash), models.CodeConflict))
	})

	t.Run("delete cascades posts", func(t *testing.T) {
		leo := testutil.CreateUser(t, db, "leo")
		testutil.CreatePost(t, db, leo, "in cats", testutil.InGroup(cats))
		testutil.CreatePost(t, db, leo, "ungrouped")

		require.NoError(t, repo.Delete(ctx, cats.ID))
		assert.EqualValues(t, 1, testutil.Count(t, db, &models.Post{}))
		assert.True(t, models.HasCode(repo.Delete(ctx, cats.ID), models.CodeNotFound))
	})
}
