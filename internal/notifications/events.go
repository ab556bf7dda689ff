package notifications

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types delivered to websocket clients.
const (
	EventFollowCreated  = "follow_created"
	EventCommentCreated = "comment_created"
	EventPostCreated    = "post_created"
)

// Event is the envelope written to a user's websocket connections.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent stamps an event of the given type.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, Payload: payload, CreatedAt: time.Now().UTC()}
}

// Encode renders the event as the JSON text frame sent to clients.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return string(b), nil
}

// FollowPayload tells an author who started following them.
type FollowPayload struct {
	FollowerID       uint   `json:"follower_id"`
	FollowerUsername string `json:"follower_username"`
}

// CommentPayload tells a post author about a new comment.
type CommentPayload struct {
	PostID         uint   `json:"post_id"`
	CommentID      uint   `json:"comment_id"`
	AuthorUsername string `json:"author_username"`
	Text           string `json:"text"`
}

// PostPayload tells followers an author they follow published a post.
type PostPayload struct {
	PostID         uint   `json:"post_id"`
	AuthorUsername string `json:"author_username"`
	Text           string `json:"text"`
}
