package service

import (
	"context"
	"sync"
	"testing"

	"yatube/internal/cache"
	"yatube/internal/featureflags"
	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/repository"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertFieldError asserts a validation error on field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Equal(t, field, appErr.Field)
}

type publishedEvent struct {
	UserID uint
	Event  notifications.Event
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, userID uint, event notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Event: event})
	return p.err
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// harness wires every service against one sqlite database.
type harness struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	publisher *recordingPublisher
	feed      *FeedService
	posts     *PostService
	comments  *CommentService
	follows   *FollowService
	groups    *GroupService
}

func newHarness(t *testing.T, flags string) *harness {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr, rdb := testutil.NewRedis(t)
	manager := featureflags.NewManager(flags)
	publisher := &recordingPublisher{}
	events := NewEvents(publisher, manager)

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &harness{
		db:        db,
		mr:        mr,
		publisher: publisher,
		feed: NewFeedService(FeedDeps{
			Posts:    postRepo,
			Groups:   groupRepo,
			Users:    userRepo,
			Follows:  followRepo,
			Comments: commentRepo,
			Cache:    cache.NewStore(rdb),
			Flags:    manager,
		}, FeedConfig{PageSize: 10, IndexTTL: defaultTestTTL}),
		posts:    NewPostService(postRepo, groupRepo, followRepo, events, 10),
		comments: NewCommentService(commentRepo, postRepo, events),
		follows:  NewFollowService(userRepo, followRepo, events),
		groups:   NewGroupService(groupRepo),
	}
}
