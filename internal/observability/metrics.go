package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ViewCacheRequests counts cached view lookups by view and result (hit, miss, error).
	ViewCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_view_cache_requests_total",
		Help: "Cached view lookups by view and result",
	}, []string{"view", "result"})

	// PostsWritten counts post mutations by operation.
	PostsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_posts_written_total",
		Help: "Post mutations by operation (create, edit, delete)",
	}, []string{"operation"})

	// CommentsCreated counts persisted comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Total number of comments created",
	})

	// FollowChanges counts follow edge transitions by operation and outcome.
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_follow_changes_total",
		Help: "Follow edge transitions by operation (follow, unfollow) and outcome",
	}, []string{"operation", "outcome"})

	// WebSocketBackpressureDrops counts notification messages dropped by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)
