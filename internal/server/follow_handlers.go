package server

import (
	"yatube/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles GET /:username/follow/
// @Summary Follow an author
// @Description Idempotent. Browsers are redirected to the author profile.
// @Tags follows
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {object} object{author=models.User,following=bool,created=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/follow/ [get]
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	author, created, err := s.followService.Follow(c.UserContext(), middleware.CurrentUserID(c), username)
	if err != nil {
		return respondError(c, err)
	}
	return respondDone(c, fiber.StatusOK, profileURL(author.Username), fiber.Map{
		"author":    author,
		"following": true,
		"created":   created,
	})
}

// ProfileUnfollow handles GET /:username/unfollow/
// @Summary Unfollow an author
// @Description Browsers are redirected to the author profile.
// @Tags follows
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {object} object{author=models.User,following=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/unfollow/ [get]
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, err := s.followService.Unfollow(c.UserContext(), middleware.CurrentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return respondDone(c, fiber.StatusOK, profileURL(author.Username), fiber.Map{
		"author":    author,
		"following": false,
	})
}
