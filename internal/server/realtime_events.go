package server

import (
	"context"

	"yatube/internal/notifications"
)

// PublishEvent delivers event to every socket userID has open. With Redis the
// event travels through the user's channel so every instance sees it;
// without Redis only sockets on this process are reached.
func (s *Server) PublishEvent(ctx context.Context, userID uint, event notifications.Event) error {
	if s.redis != nil {
		return s.notifier.PublishEvent(ctx, userID, event)
	}
	message, err := event.Encode()
	if err != nil {
		return err
	}
	s.hub.Broadcast(userID, message)
	return nil
}
