package server

import (
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
// @Summary Index feed
// @Description Every post, newest first. Pages are cached briefly.
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} models.PostPage
// @Router / [get]
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.ListAll(c.UserContext(), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GroupIndex handles GET /group/. There is no group listing page.
func (s *Server) GroupIndex(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Group", ""))
}

// GroupPosts handles GET /group/:slug/
// @Summary Group feed
// @Tags feeds
// @Produce json
// @Param slug path string true "Group slug"
// @Param page query int false "Page number"
// @Success 200 {object} service.GroupFeed
// @Failure 404 {object} models.ErrorResponse
// @Router /group/{slug}/ [get]
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.ListByGroup(c.UserContext(), c.Params("slug"), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// FollowIndex handles GET /follow/
// @Summary Followed authors feed
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} models.PostPage
// @Router /follow/ [get]
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.ListFollowed(c.UserContext(), middleware.CurrentUserID(c), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Profile handles GET /:username/
// @Summary Author profile
// @Tags feeds
// @Produce json
// @Param username path string true "Author username"
// @Param page query int false "Page number"
// @Success 200 {object} service.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/ [get]
func (s *Server) Profile(c *fiber.Ctx) error {
	profile, err := s.feedService.ListByAuthor(c.UserContext(), c.Params("username"),
		middleware.CurrentUserID(c), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// postPage is the post view together with an empty comment form.
type postPage struct {
	*service.PostView
	CommentForm formResponse `json:"comment_form"`
}

// PostView handles GET /:username/:postId/
// @Summary Single post
// @Tags feeds
// @Produce json
// @Param username path string true "Author username"
// @Param postId path int true "Post ID"
// @Success 200 {object} service.PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{postId}/ [get]
func (s *Server) PostView(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}
	view, err := s.feedService.GetPost(c.UserContext(), c.Params("username"), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(postPage{
		PostView:    view,
		CommentForm: formResponse{Form: commentForm{}, Errors: map[string][]string{}},
	})
}
