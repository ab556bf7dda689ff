package service

import (
	"context"
	"errors"
	"testing"

	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_Lifecycle(t *testing.T) {
	h := newHarness(t, "")
	leo := testutil.CreateUser(t, h.db, "leo")
	ann := testutil.CreateUser(t, h.db, "ann")
	ctx := context.Background()

	target, created, err := h.follows.Follow(ctx, ann.ID, "leo")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, leo.ID, target.ID)
	assert.Empty(t, target.Email)

	following, err := h.follows.IsFollowing(ctx, ann.ID, leo.ID)
	require.NoError(t, err)
	assert.True(t, following)

	events := h.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, leo.ID, events[0].UserID)
	assert.Equal(t, notifications.EventFollowCreated, events[0].Event.Type)
	payload, ok := events[0].Event.Payload.(notifications.FollowPayload)
	require.True(t, ok)
	assert.Equal(t, "ann", payload.FollowerUsername)

	t.Run("following twice keeps one edge", func(t *testing.T) {
		_, created, err := h.follows.Follow(ctx, ann.ID, "leo")
		require.NoError(t, err)
		assert.False(t, created)
		assert.EqualValues(t, 1, testutil.Count(t, h.db, &models.Follow{}))
		assert.Len(t, h.publisher.published(), 1)
	})

	t.Run("unfollow removes the edge", func(t *testing.T) {
		target, err := h.follows.Unfollow(ctx, ann.ID, "leo")
		require.NoError(t, err)
		assert.Equal(t, "leo", target.Username)
		assert.Zero(t, testutil.Count(t, h.db, &models.Follow{}))
	})

	t.Run("unfollow without an edge", func(t *testing.T) {
		_, err := h.follows.Unfollow(ctx, ann.ID, "leo")
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestFollowService_Errors(t *testing.T) {
	h := newHarness(t, "")
	leo := testutil.CreateUser(t, h.db, "leo")
	ctx := context.Background()

	_, _, err := h.follows.Follow(ctx, leo.ID, "leo")
	assertCode(t, err, models.CodeSelfFollow)
	assert.Zero(t, testutil.Count(t, h.db, &models.Follow{}))

	_, _, err = h.follows.Follow(ctx, 0, "leo")
	assertCode(t, err, models.CodeUnauthorized)

	_, _, err = h.follows.Follow(ctx, leo.ID, "ghost")
	assertCode(t, err, models.CodeNotFound)

	_, err = h.follows.Unfollow(ctx, 0, "leo")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = h.follows.Unfollow(ctx, leo.ID, "ghost")
	assertCode(t, err, models.CodeNotFound)

	following, err := h.follows.IsFollowing(ctx, 0, leo.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowService_PublishFailureDoesNotFailFollow(t *testing.T) {
	h := newHarness(t, "")
	h.publisher.err = errors.New("redis down")
	testutil.CreateUser(t, h.db, "leo")
	ann := testutil.CreateUser(t, h.db, "ann")

	_, created, err := h.follows.Follow(context.Background(), ann.ID, "leo")
	require.NoError(t, err)
	assert.True(t, created)
}
