package server

import (
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm is the create/edit post form. Group is the submitted group id, blank for none.
type postForm struct {
	Text  string   `json:"text" form:"text"`
	Group groupRef `json:"group,omitempty" form:"group"`
	Image string   `json:"image,omitempty" form:"image"`
}

// postFormPage is the document behind the create and edit screens.
type postFormPage struct {
	formResponse
	Groups []*models.Group `json:"groups"`
	// IsEdit is set when the form changes an existing post.
	IsEdit bool         `json:"is_edit"`
	Post   *models.Post `json:"post,omitempty"`
}

func formFromPost(post *models.Post) postForm {
	form := postForm{Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		form.Group = groupRef(uintString(*post.GroupID))
	}
	return form
}

func (s *Server) renderPostForm(c *fiber.Ctx, form postForm, errs map[string][]string, post *models.Post) error {
	groups, err := s.groupService.ListGroups(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if errs == nil {
		errs = map[string][]string{}
	}
	return c.JSON(postFormPage{
		formResponse: formResponse{Form: form, Errors: errs},
		Groups:       groups,
		IsEdit:       post != nil,
		Post:         post,
	})
}

// NewPostForm handles GET /new/
// @Summary New post form
// @Tags posts
// @Produce json
// @Success 200 {object} object{form=object,errors=object,groups=[]models.Group}
// @Router /new/ [get]
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, postForm{}, nil, nil)
}

// CreatePost handles POST /new/
// @Summary Create a post
// @Description Publishes a post for the current user. Browsers are redirected to the index.
// @Tags posts
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body object{text=string,group=int,image=string} true "Post form"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /new/ [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, invalidBody())
	}
	groupID, err := parseGroupRef(form.Group)
	if err != nil {
		return respondForm(c, form, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: middleware.CurrentUserID(c),
		Text:     form.Text,
		GroupID:  groupID,
		Image:    form.Image,
	})
	if err != nil {
		return respondForm(c, form, err)
	}
	return respondDone(c, fiber.StatusCreated, "/", post)
}

// EditPostForm handles GET /:username/:postId/edit/
// @Summary Edit post form
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Param postId path int true "Post ID"
// @Success 200 {object} object{form=object,errors=object,groups=[]models.Group,post=models.Post}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{postId}/edit/ [get]
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	post, err := s.ownedPost(c)
	if err != nil {
		return respondError(c, err)
	}
	return s.renderPostForm(c, formFromPost(post), nil, post)
}

// EditPost handles POST /:username/:postId/edit/
// @Summary Edit a post
// @Description Overwrites text, group and image. Browsers are redirected to the post page.
// @Tags posts
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username path string true "Author username"
// @Param postId path int true "Post ID"
// @Param request body object{text=string,group=int,image=string} true "Post form"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{postId}/edit/ [post]
func (s *Server) EditPost(c *fiber.Ctx) error {
	post, err := s.ownedPost(c)
	if err != nil {
		return respondError(c, err)
	}

	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, invalidBody())
	}
	groupID, err := parseGroupRef(form.Group)
	if err != nil {
		return respondForm(c, form, err)
	}

	updated, err := s.postService.EditPost(c.UserContext(), service.EditPostInput{
		RequestingUserID: middleware.CurrentUserID(c),
		PostID:           post.ID,
		Text:             form.Text,
		GroupID:          groupID,
		Image:            form.Image,
	})
	if err != nil {
		return respondForm(c, form, err)
	}
	return respondDone(c, fiber.StatusOK, postURL(updated.Author.Username, updated.ID), updated)
}

// DeletePost handles POST /:username/:postId/delete/
// @Summary Delete a post
// @Description Removes the post and its comments. Browsers are redirected to the author profile.
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Param postId path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /{username}/{postId}/delete/ [post]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post, err := s.ownedPost(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.postService.DeletePost(c.UserContext(), middleware.CurrentUserID(c), post.ID); err != nil {
		return respondError(c, err)
	}
	return respondDone(c, fiber.StatusOK, profileURL(post.Author.Username), fiber.Map{"message": "Post deleted"})
}

// ownedPost resolves the post named by the URL and checks the caller wrote it.
func (s *Server) ownedPost(c *fiber.Ctx) (*models.Post, error) {
	postID, err := parsePostID(c)
	if err != nil {
		return nil, err
	}
	if _, err := s.feedService.ResolvePost(c.UserContext(), c.Params("username"), postID); err != nil {
		return nil, err
	}
	return s.postService.AuthorizeEdit(c.UserContext(), middleware.CurrentUserID(c), postID)
}
