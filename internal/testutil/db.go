// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"yatube/internal/database"
	"yatube/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a fresh in-memory database with the full schema and foreign keys on.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewRedis starts a miniredis server that lives for the duration of the test.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user named username with a throwaway password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateGroup inserts a group with the given slug and a derived title.
func CreateGroup(t testing.TB, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, db.Create(group).Error)
	return group
}

// PostOption customises a fixture post.
type PostOption func(*models.Post)

// InGroup places the post in group.
func InGroup(group *models.Group) PostOption {
	return func(p *models.Post) { p.GroupID = &group.ID }
}

// PublishedAt fixes the post's pub_date.
func PublishedAt(ts time.Time) PostOption {
	return func(p *models.Post) { p.PubDate = ts.UTC() }
}

// CreatePost inserts a post authored by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, text string, opts ...PostOption) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	for _, opt := range opts {
		opt(post)
	}
	require.NoError(t, db.Omit(clause.Associations).Create(post).Error)
	return post
}

// CreatePosts inserts n posts by author one minute apart, oldest first, starting at base.
func CreatePosts(t testing.TB, db *gorm.DB, author *models.User, n int, base time.Time, opts ...PostOption) []*models.Post {
	t.Helper()
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		all := append([]PostOption{PublishedAt(base.Add(time.Duration(i) * time.Minute))}, opts...)
		posts = append(posts, CreatePost(t, db, author, "post "+strconv.Itoa(i), all...))
	}
	return posts
}

// Follow inserts a follow edge user → author.
func Follow(t testing.TB, db *gorm.DB, user, author *models.User) {
	t.Helper()
	require.NoError(t, db.Omit(clause.Associations).Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error)
}

// Count returns the row count of model's table.
func Count(t testing.TB, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
