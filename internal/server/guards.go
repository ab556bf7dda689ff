package server

import (
	"context"
	"net/url"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LoginRequired redirects guests to the login page, carrying the requested URI in ?next=.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.resolveCaller(c)
		if err != nil {
			return respondError(c, err)
		}
		if userID == 0 {
			return c.Redirect(s.loginURL()+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// APIAuthRequired rejects guests with 401 instead of redirecting them.
func (s *Server) APIAuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.resolveCaller(c)
		if err != nil {
			return respondError(c, err)
		}
		if userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		return c.Next()
	}
}

// resolveCaller confirms the token's user still exists. A token that outlived its
// account is demoted to a guest.
func (s *Server) resolveCaller(c *fiber.Ctx) (uint, error) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return 0, nil
	}
	if _, err := s.userRepo.GetByID(c.UserContext(), userID); err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			return 0, err
		}
		c.Locals("userID", uint(0))
		c.Locals("tokenClaims", nil)
		return 0, nil
	}
	return userID, nil
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after APIAuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.isAdminByUserID(c.UserContext(), middleware.CurrentUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		// A token for a deleted account grants nothing.
		if models.HasCode(err, models.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}
