package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientA)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientB)
	assert.False(t, hub.IsOnline(10))

	// A second unregister of the same client is a no-op.
	hub.UnregisterClient(clientB)
	assert.Equal(t, 0, hub.totalConns)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastTargetsOneUser(t *testing.T) {
	hub := NewHub()
	ann, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, `{"type":"follow_created"}`)

	select {
	case msg := <-ann.Send:
		assert.JSONEq(t, `{"type":"follow_created"}`, string(msg))
	case <-time.After(testEventuallyTimeout):
		t.Fatal("expected a message for user 1")
	}
	assert.Empty(t, bob.Send)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		client.TrySend([]byte("x"))
	}
	assert.Len(t, client.Send, sendBuffer)
}

func TestClient_TrySendOnClosedChannel(t *testing.T) {
	client := NewClient(NewHub(), nil, 4)
	close(client.Send)
	assert.NotPanics(t, func() { client.TrySend([]byte("late")) })
}

func TestHub_ShutdownClearsConnections(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(5, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.False(t, hub.IsOnline(5))
	assert.Equal(t, 0, hub.totalConns)
}
