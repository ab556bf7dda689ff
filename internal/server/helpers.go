package server

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLoginURL = "/auth/login/"
	// nonFieldErrors collects form errors not tied to a single field.
	nonFieldErrors = "__all__"
)

// formResponse is the document returned for a form: its current values and any errors.
type formResponse struct {
	Form   any                 `json:"form"`
	Errors map[string][]string `json:"errors"`
}

// pageParam reads ?page=. Anything but a positive integer is the first page.
func pageParam(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parsePostID extracts the :postId route parameter. A malformed id names no post.
func parsePostID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("postId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Post", raw)
	}
	return uint(id), nil
}

// groupRef is a submitted group choice, echoed back verbatim when the form is re-rendered.
// JSON clients may send the id as a number or a string.
type groupRef string

func (g *groupRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = ""
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*g = groupRef(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*g = groupRef(number.String())
	return nil
}

// parseGroupRef turns a submitted group choice into a group id. Blank means no group.
func parseGroupRef(ref groupRef) (*uint, error) {
	raw := strings.TrimSpace(string(ref))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, models.NewFieldError("group", "Select a valid choice.")
	}
	groupID := uint(id)
	return &groupID, nil
}

// wantsJSON reports whether the client prefers a JSON document over an HTML redirect.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// respondDone completes a mutation: HTML clients are redirected to location,
// JSON clients receive body with status.
func respondDone(c *fiber.Ctx, status int, location string, body any) error {
	if wantsJSON(c) {
		return c.Status(status).JSON(body)
	}
	return c.Redirect(location, fiber.StatusFound)
}

// respondForm re-renders a submitted form with its validation errors.
// Errors other than validation failures are answered by respondError.
func respondForm(c *fiber.Ctx, form any, err error) error {
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Code != models.CodeValidation {
		return respondError(c, err)
	}
	field := appErr.Field
	if field == "" {
		field = nonFieldErrors
	}
	return c.Status(fiber.StatusOK).JSON(formResponse{
		Form:   form,
		Errors: map[string][]string{field: {appErr.Message}},
	})
}

// respondError writes err with the status its code maps to.
// Errors that are not AppErrors never leak their text.
func respondError(c *fiber.Ctx, err error) error {
	if _, ok := models.AsAppError(err); !ok {
		err = models.NewInternalError(err)
	}
	status := models.StatusForError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}

// invalidBody is the error for a request body that cannot be decoded.
func invalidBody() error {
	return models.NewValidationError("Invalid request body")
}

// loginURL is where guests are sent to authenticate.
func (s *Server) loginURL() string {
	if s.config.LoginURL == "" {
		return defaultLoginURL
	}
	return s.config.LoginURL
}

func profileURL(username string) string {
	return "/" + username + "/"
}

func postURL(username string, postID uint) string {
	return "/" + username + "/" + uintString(postID) + "/"
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
