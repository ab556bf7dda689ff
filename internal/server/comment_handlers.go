package server

import (
	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// commentForm is the add comment form.
type commentForm struct {
	Text string `json:"text" form:"text"`
}

// AddComment handles POST /:username/:postId/comment/
// @Summary Comment on a post
// @Description Adds a comment as the current user. Browsers are redirected to the post page.
// @Tags comments
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username path string true "Author username"
// @Param postId path int true "Post ID"
// @Param request body object{text=string} true "Comment form"
// @Success 201 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{postId}/comment/ [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}
	username := c.Params("username")
	if _, err := s.feedService.ResolvePost(c.UserContext(), username, postID); err != nil {
		return respondError(c, err)
	}

	var form commentForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, invalidBody())
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		AuthorID: middleware.CurrentUserID(c),
		PostID:   postID,
		Text:     form.Text,
	})
	if err != nil {
		return respondForm(c, form, err)
	}
	return respondDone(c, fiber.StatusCreated, postURL(username, postID), comment)
}
