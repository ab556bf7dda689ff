package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/observability"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxImageURLLen = 500

// PostService owns post creation, editing and deletion.
type PostService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	followRepo repository.FollowRepository
	events     *Events
	pageSize   int
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    string
}

type EditPostInput struct {
	RequestingUserID uint
	PostID           uint
	Text             string
	GroupID          *uint
	Image            string
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	followRepo repository.FollowRepository,
	events *Events,
	pageSize int,
) *PostService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PostService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		followRepo: followRepo,
		events:     events,
		pageSize:   pageSize,
	}
}

// CreatePost publishes a new post by in.AuthorID and notifies their followers.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (result *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post", "create", attribute.Int64("author.id", int64(in.AuthorID)))
	defer func() { span.End(err) }()

	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	content, err := s.validateContent(ctx, in.Text, in.GroupID, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     content.text,
		AuthorID: in.AuthorID,
		GroupID:  content.groupID,
		Image:    content.image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsWritten.WithLabelValues("create").Inc()

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.notifyFollowers(ctx, created)
	return created, nil
}

// AuthorizeEdit loads postID and checks that userID may change it.
func (s *PostService) AuthorizeEdit(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only change your own posts")
	}
	return post, nil
}

// EditPost overwrites text, group and image. pub_date is never touched.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (result *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post", "edit", attribute.Int64("post.id", int64(in.PostID)))
	defer func() { span.End(err) }()

	post, err := s.AuthorizeEdit(ctx, in.RequestingUserID, in.PostID)
	if err != nil {
		return nil, err
	}
	content, err := s.validateContent(ctx, in.Text, in.GroupID, in.Image)
	if err != nil {
		return nil, err
	}

	post.Text = content.text
	post.GroupID = content.groupID
	post.Image = content.image
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsWritten.WithLabelValues("edit").Inc()

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the post and, through the schema, its comments.
func (s *PostService) DeletePost(ctx context.Context, requestingUserID, postID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "post", "delete", attribute.Int64("post.id", int64(postID)))
	defer func() { span.End(err) }()

	if _, err := s.AuthorizeEdit(ctx, requestingUserID, postID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	observability.PostsWritten.WithLabelValues("delete").Inc()
	return nil
}

// SearchPosts returns a page of posts whose text contains query, ignoring case.
func (s *PostService) SearchPosts(ctx context.Context, query string, page int) (*models.PostPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	page = normalizePage(page)
	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{Query: query}, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return models.NewPostPage(posts, page, s.pageSize, total), nil
}

type postContent struct {
	text    string
	groupID *uint
	image   string
}

func (s *PostService) validateContent(ctx context.Context, text string, groupID *uint, image string) (postContent, error) {
	out := postContent{text: strings.TrimSpace(text), image: strings.TrimSpace(image)}
	if out.text == "" {
		return out, models.NewFieldError("text", "This field is required.")
	}
	if groupID != nil && *groupID != 0 {
		if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return out, models.NewFieldError("group", "Select a valid choice. That choice is not one of the available choices.")
			}
			return out, err
		}
		id := *groupID
		out.groupID = &id
	}
	if out.image != "" && !isImageURL(out.image) {
		return out, models.NewFieldError("image", "Enter a valid http or https URL.")
	}
	return out, nil
}

func isImageURL(raw string) bool {
	if len(raw) > maxImageURLLen {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *PostService) notifyFollowers(ctx context.Context, post *models.Post) {
	if s.events == nil || s.followRepo == nil {
		return
	}
	followers, err := s.followRepo.ListFollowerIDs(ctx, post.AuthorID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load followers for post event",
			slog.Uint64("post_id", uint64(post.ID)), slog.String("error", err.Error()))
		return
	}
	event := notifications.NewEvent(notifications.EventPostCreated, notifications.PostPayload{
		PostID:         post.ID,
		AuthorUsername: post.Author.Username,
		Text:           post.Text,
	})
	for _, id := range followers {
		s.events.Publish(ctx, id, event)
	}
}
