package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/observability"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	events      *Events
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Text     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	events *Events,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		events:      events,
	}
}

// AddComment attaches a comment to a post and tells the post author about it.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (result *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "comment", "add", attribute.Int64("post.id", int64(in.PostID)))
	defer func() { span.End(err) }()

	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewFieldError("text", "This field is required.")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewFieldError("text", "Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		Text:     text,
		AuthorID: in.AuthorID,
		PostID:   post.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.Inc()

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.AuthorID {
		s.events.Publish(ctx, post.AuthorID, notifications.NewEvent(notifications.EventCommentCreated, notifications.CommentPayload{
			PostID:         post.ID,
			CommentID:      created.ID,
			AuthorUsername: created.Author.Username,
			Text:           created.Text,
		}))
	}
	return created, nil
}

// ListComments returns the comments of a post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
