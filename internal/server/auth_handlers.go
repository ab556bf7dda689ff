package server

import (
	"strings"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// authResponse is returned by signup and login.
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles POST /auth/signup/
// @Summary User signup
// @Description Register a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Signup request"
// @Success 201 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup/ [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	user, err := s.accountService.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.startSession(c, user)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// LoginPage handles GET /auth/login/ and echoes where to return after login.
// @Summary Login screen
// @Tags auth
// @Produce json
// @Param next query string false "Path to return to"
// @Success 200 {object} object{next=string}
// @Router /auth/login/ [get]
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"next": safeNext(c.Query("next"))})
}

// Login handles POST /auth/login/
// @Summary User login
// @Description Authenticate user, set the token cookie and return the JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string,next=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login/ [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
		Next     string `json:"next" form:"next"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Username and password are required"))
	}

	user, err := s.accountService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.startSession(c, user)
	if err != nil {
		return respondError(c, err)
	}

	next := safeNext(req.Next)
	if next == "" {
		next = safeNext(c.Query("next"))
	}
	if next != "" && !wantsJSON(c) {
		return c.Redirect(next, fiber.StatusFound)
	}
	return c.JSON(authResponse{Token: token, User: user})
}

// Logout handles POST /auth/logout/
// @Summary User logout
// @Description Revokes the current token and clears the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout/ [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := middleware.Revoke(c.UserContext(), s.redis, middleware.CurrentClaims(c)); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respondDone(c, fiber.StatusOK, "/", fiber.Map{"message": "Logged out"})
}

// startSession issues a token for user and stores it in the token cookie.
func (s *Server) startSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, time.Now())
	if err != nil {
		return "", models.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

// safeNext keeps only same-site absolute paths so ?next= cannot redirect off-site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
