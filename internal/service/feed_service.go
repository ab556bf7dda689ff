package service

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"yatube/internal/cache"
	"yatube/internal/featureflags"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPageSize is the number of posts on one feed page.
const DefaultPageSize = 10

// FeedConfig tunes paging and index caching.
type FeedConfig struct {
	PageSize int
	// IndexTTL is how long a rendered index page is served from cache.
	IndexTTL time.Duration
}

// FeedDeps are the collaborators of FeedService.
type FeedDeps struct {
	Posts    repository.PostRepository
	Groups   repository.GroupRepository
	Users    repository.UserRepository
	Follows  repository.FollowRepository
	Comments repository.CommentRepository
	Cache    *cache.Store
	Flags    *featureflags.Manager
}

// FeedService composes the read side: the index, group, profile and follow feeds and the post page.
type FeedService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
	cache    *cache.Store
	flags    *featureflags.Manager
	cfg      FeedConfig
}

// GroupFeed is one page of a group's posts.
type GroupFeed struct {
	Group *models.Group    `json:"group"`
	Page  *models.PostPage `json:"page"`
}

// Profile is one page of an author's posts with their follow counters.
type Profile struct {
	Author         models.User      `json:"author"`
	Page           *models.PostPage `json:"page"`
	PostsCount     int64            `json:"posts_count"`
	FollowersCount int64            `json:"followers_count"`
	FollowingCount int64            `json:"following_count"`
	// Following reports whether the viewer follows Author.
	Following bool `json:"following"`
}

// PostView is a single post with its author's post count and comments.
type PostView struct {
	Post       *models.Post      `json:"post"`
	Author     models.User       `json:"author"`
	PostsCount int64             `json:"posts_count"`
	Comments   []*models.Comment `json:"comments"`
}

// NewFeedService builds a FeedService. Zero config fields take their defaults.
func NewFeedService(deps FeedDeps, cfg FeedConfig) *FeedService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &FeedService{
		posts:    deps.Posts,
		groups:   deps.Groups,
		users:    deps.Users,
		follows:  deps.Follows,
		comments: deps.Comments,
		cache:    deps.Cache,
		flags:    deps.Flags,
		cfg:      cfg,
	}
}

// PageSize is the number of posts per page.
func (s *FeedService) PageSize() int { return s.cfg.PageSize }

// ListAll returns a page of every post. Pages are cached for the index TTL
// and writes do not invalidate them.
func (s *FeedService) ListAll(ctx context.Context, page int) (result *models.PostPage, err error) {
	page = normalizePage(page)
	ctx, span := observability.StartSpan(ctx, "feed", "list_all", attribute.Int("page", page))
	defer func() { span.End(err) }()

	if !s.flags.Enabled(featureflags.IndexCache, 0) {
		return s.listPage(ctx, repository.PostFilter{}, page)
	}

	var cached models.PostPage
	key := IndexCacheKey(page)
	err = s.cache.Aside(ctx, "index", key, &cached, s.cfg.IndexTTL, func() error {
		p, fetchErr := s.listPage(ctx, repository.PostFilter{}, page)
		if fetchErr != nil {
			return fetchErr
		}
		cached = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

// IndexCacheKey is the view cache key of an index page.
func IndexCacheKey(page int) string {
	return cache.ViewKey("/", url.Values{"page": {strconv.Itoa(normalizePage(page))}})
}

// ListByGroup returns a page of the posts in the group identified by slug.
func (s *FeedService) ListByGroup(ctx context.Context, slug string, page int) (result *GroupFeed, err error) {
	page = normalizePage(page)
	ctx, span := observability.StartSpan(ctx, "feed", "list_by_group",
		attribute.String("group.slug", slug), attribute.Int("page", page))
	defer func() { span.End(err) }()

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	p, err := s.listPage(ctx, repository.PostFilter{GroupID: group.ID}, page)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Page: p}, nil
}

// ListByAuthor returns the profile of username as seen by viewerID (0 for guests).
func (s *FeedService) ListByAuthor(ctx context.Context, username string, viewerID uint, page int) (result *Profile, err error) {
	page = normalizePage(page)
	ctx, span := observability.StartSpan(ctx, "feed", "list_by_author",
		attribute.String("author.username", username), attribute.Int("page", page))
	defer func() { span.End(err) }()

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := s.listPage(ctx, repository.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Author:         author.Public(),
		Page:           p,
		PostsCount:     p.Total,
		FollowersCount: followers,
		FollowingCount: following,
	}
	if viewerID != 0 && viewerID != author.ID {
		if profile.Following, err = s.follows.Exists(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// ListFollowed returns a page of posts by the authors currentUserID follows.
func (s *FeedService) ListFollowed(ctx context.Context, currentUserID uint, page int) (result *models.PostPage, err error) {
	page = normalizePage(page)
	ctx, span := observability.StartSpan(ctx, "feed", "list_followed", attribute.Int("page", page))
	defer func() { span.End(err) }()

	if currentUserID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	return s.listPage(ctx, repository.PostFilter{FollowerID: currentUserID}, page)
}

// GetPost returns the post page for /<username>/<postID>/.
func (s *FeedService) GetPost(ctx context.Context, username string, postID uint) (result *PostView, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "get_post", attribute.Int64("post.id", int64(postID)))
	defer func() { span.End(err) }()

	post, err := s.ResolvePost(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostView{Post: post, Author: post.Author.Public(), PostsCount: count, Comments: comments}, nil
}

// ResolvePost loads postID and checks that username is its author.
// A mismatch is reported as not found.
func (s *FeedService) ResolvePost(ctx context.Context, username string, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author.Username != username {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *FeedService) listPage(ctx context.Context, filter repository.PostFilter, page int) (*models.PostPage, error) {
	size := s.cfg.PageSize
	posts, total, err := s.posts.List(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	return models.NewPostPage(posts, page, size, total), nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
