package service

import (
	"context"
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/observability"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FollowService manages follow edges between users and authors.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	events     *Events
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository, events *Events) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo, events: events}
}

// Follow makes userID follow targetUsername. Following twice is a no-op;
// created reports whether a new edge was written.
func (s *FollowService) Follow(ctx context.Context, userID uint, targetUsername string) (target *models.User, created bool, err error) {
	ctx, span := observability.StartSpan(ctx, "follow", "follow", attribute.String("target.username", targetUsername))
	defer func() { span.End(err) }()

	author, err := s.resolveTarget(ctx, userID, targetUsername)
	if err != nil {
		return nil, false, err
	}
	if author.ID == userID {
		observability.FollowChanges.WithLabelValues("follow", "self").Inc()
		return nil, false, models.NewSelfFollowError()
	}

	created, err = s.followRepo.Create(ctx, userID, author.ID)
	if err != nil {
		return nil, false, err
	}
	if !created {
		observability.FollowChanges.WithLabelValues("follow", "exists").Inc()
		return author, false, nil
	}
	observability.FollowChanges.WithLabelValues("follow", "created").Inc()
	s.notifyFollowed(ctx, userID, author.ID)
	return author, true, nil
}

// Unfollow removes the edge from userID to targetUsername.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, targetUsername string) (target *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "follow", "unfollow", attribute.String("target.username", targetUsername))
	defer func() { span.End(err) }()

	author, err := s.resolveTarget(ctx, userID, targetUsername)
	if err != nil {
		return nil, err
	}
	removed, err := s.followRepo.Delete(ctx, userID, author.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		observability.FollowChanges.WithLabelValues("unfollow", "missing").Inc()
		return nil, models.NewNotFoundError("Follow", targetUsername)
	}
	observability.FollowChanges.WithLabelValues("unfollow", "removed").Inc()
	return author, nil
}

// IsFollowing reports whether userID follows authorID. Guests follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *FollowService) resolveTarget(ctx context.Context, userID uint, username string) (*models.User, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	public := author.Public()
	return &public, nil
}

func (s *FollowService) notifyFollowed(ctx context.Context, followerID, authorID uint) {
	if s.events == nil {
		return
	}
	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load follower for follow event",
			slog.Uint64("follower_id", uint64(followerID)), slog.String("error", err.Error()))
		return
	}
	s.events.Publish(ctx, authorID, notifications.NewEvent(notifications.EventFollowCreated, notifications.FollowPayload{
		FollowerID:       follower.ID,
		FollowerUsername: follower.Username,
	}))
}
