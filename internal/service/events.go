package service

import (
	"context"
	"log/slog"

	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/notifications"
)

// EventPublisher delivers a realtime event to one user.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, event notifications.Event) error
}

// Events publishes realtime notifications when realtime_notifications is on
// for the recipient. Delivery is best effort and never fails the caller.
type Events struct {
	publisher EventPublisher
	flags     *featureflags.Manager
}

// NewEvents returns an Events publisher. A nil publisher drops every event.
func NewEvents(publisher EventPublisher, flags *featureflags.Manager) *Events {
	return &Events{publisher: publisher, flags: flags}
}

// Publish sends event to recipientID.
func (e *Events) Publish(ctx context.Context, recipientID uint, event notifications.Event) {
	if e == nil || e.publisher == nil || recipientID == 0 {
		return
	}
	if !e.flags.Enabled(featureflags.RealtimeNotifications, recipientID) {
		return
	}
	if err := e.publisher.PublishEvent(ctx, recipientID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish realtime event",
			slog.String("event", event.Type),
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.String("error", err.Error()))
	}
}
