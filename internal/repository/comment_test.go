package repository

import (
	"context"
	"regexp"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := &models.Comment{Text: "Nice post!", PostID: 1, AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE post_id = $1 ORDER BY created_date ASC, id ASC`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "author_id"}).
			AddRow(1, "Comment 1", 101).
			AddRow(2, "Comment 2", 102))

	mock.ExpectQuery(`SELECT .*"username".* FROM "users" WHERE "users"."id" IN \(\$1,\$2\)`).
		WithArgs(101, 102).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(101, "user101").
			AddRow(102, "user102"))

	comments, err := repo.ListByPost(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, "Comment 1", comments[0].Text)
	assert.Equal(t, "user102", comments[1].Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	leo := testutil.CreateUser(t, db, "leo")
	ann := testutil.CreateUser(t, db, "ann")
	post := testutil.CreatePost(t, db, leo, "hello")

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: ann.ID, Text: text}))
	}

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "third", comments[2].Text)
	assert.Equal(t, "ann", comments[0].Author.Username)
	assert.False(t, comments[0].CreatedDate.IsZero())

	got, err := repo.GetByID(ctx, comments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text)

	t.Run("missing post violates the foreign key", func(t *testing.T) {
		err := repo.Create(ctx, &models.Comment{PostID: 9999, AuthorID: ann.ID, Text: "orphan"})
		assert.True(t, models.HasCode(err, models.CodeInternal))
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		empty, err := repo.ListByPost(ctx, 9999)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})
}
