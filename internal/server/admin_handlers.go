package server

import (
	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type groupRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (r groupRequest) input() service.GroupInput {
	return service.GroupInput{Title: r.Title, Slug: r.Slug, Description: r.Description}
}

// ListGroups handles GET /api/admin/groups
// @Summary List groups
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Group
// @Failure 403 {object} models.ErrorResponse
// @Router /api/admin/groups [get]
func (s *Server) ListGroups(c *fiber.Ctx) error {
	groups, err := s.groupService.ListGroups(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(groups)
}

// CreateGroup handles POST /api/admin/groups
// @Summary Create a group
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,slug=string,description=string} true "Group"
// @Success 201 {object} models.Group
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/groups [post]
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}
	group, err := s.groupService.CreateGroup(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// UpdateGroup handles PUT /api/admin/groups/:slug
// @Summary Update a group
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Group slug"
// @Param request body object{title=string,slug=string,description=string} true "Group"
// @Success 200 {object} models.Group
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/groups/{slug} [put]
func (s *Server) UpdateGroup(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}
	group, err := s.groupService.UpdateGroup(c.UserContext(), c.Params("slug"), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}

// DeleteGroup handles DELETE /api/admin/groups/:slug
// @Summary Delete a group and its posts
// @Tags admin
// @Security BearerAuth
// @Param slug path string true "Group slug"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/groups/{slug} [delete]
func (s *Server) DeleteGroup(c *fiber.Ctx) error {
	if err := s.groupService.DeleteGroup(c.UserContext(), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchPosts handles GET /api/admin/posts/search
// @Summary Search posts by text
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param page query int false "Page number"
// @Success 200 {object} models.PostPage
// @Failure 400 {object} models.ErrorResponse
// @Router /api/admin/posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page, err := s.postService.SearchPosts(c.UserContext(), c.Query("q"), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=object,evaluated=object}
// @Router /api/admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
