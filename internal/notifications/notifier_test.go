package notifications

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishEvent(context.Background(), 1, NewEvent(EventPostCreated, nil)))
	assert.NoError(t, n.StartSubscriber(context.Background(), func(uint, string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishUser(context.Background(), 1, "x"))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := ParseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}
}

func TestParseUserChannel_Invalid(t *testing.T) {
	t.Parallel()
	for _, ch := range []string{"", "notifications:user:", "notifications:user:abc", "notifications:user:0", "chat:conv:5"} {
		_, ok := ParseUserChannel(ch)
		assert.False(t, ok, ch)
	}
}

func TestEvent_Encode(t *testing.T) {
	t.Parallel()
	ev := NewEvent(EventFollowCreated, FollowPayload{FollowerID: 2, FollowerUsername: "ann"})

	raw, err := ev.Encode()
	require.NoError(t, err)

	var decoded struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "follow_created", decoded.Type)
	assert.Equal(t, "ann", decoded.Payload["follower_username"])
}

func TestNotifier_SubscriberDeliversToHub(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()
	client, err := hub.Register(9, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	ev := NewEvent(EventCommentCreated, CommentPayload{PostID: 1, CommentID: 2, AuthorUsername: "bob", Text: "hi"})
	require.NoError(t, n.PublishEvent(context.Background(), 9, ev))

	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), `"type":"comment_created"`)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("event was not delivered")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartSubscriber(ctx, func(_ uint, payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, testEventuallyTimeout, testPollInterval)

	cancel()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-payloads:
	default:
	}

	_ = n.PublishUser(context.Background(), 1, "after-cancel")
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, testPollInterval)
}

func TestNotifier_SubscriberRecoversFromPanic(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	require.NoError(t, n.StartSubscriber(ctx, func(uint, string) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
	}))

	require.NoError(t, n.PublishUser(context.Background(), 1, "first"))
	require.NoError(t, n.PublishUser(context.Background(), 1, "second"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, testEventuallyTimeout, testPollInterval)
}
