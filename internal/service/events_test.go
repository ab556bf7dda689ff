package service

import (
	"context"
	"errors"
	"testing"

	"yatube/internal/featureflags"
	"yatube/internal/notifications"

	"github.com/stretchr/testify/assert"
)

func TestEvents_Publish(t *testing.T) {
	ev := notifications.NewEvent(notifications.EventPostCreated, nil)

	t.Run("nil events is a no-op", func(t *testing.T) {
		var events *Events
		assert.NotPanics(t, func() { events.Publish(context.Background(), 1, ev) })
	})

	t.Run("anonymous recipients are skipped", func(t *testing.T) {
		p := &recordingPublisher{}
		NewEvents(p, nil).Publish(context.Background(), 0, ev)
		assert.Empty(t, p.published())
	})

	t.Run("flag off", func(t *testing.T) {
		p := &recordingPublisher{}
		NewEvents(p, featureflags.NewManager("realtime_notifications=off")).Publish(context.Background(), 1, ev)
		assert.Empty(t, p.published())
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		p := &recordingPublisher{err: errors.New("down")}
		NewEvents(p, nil).Publish(context.Background(), 4, ev)
		assert.Len(t, p.published(), 1)
	})
}
