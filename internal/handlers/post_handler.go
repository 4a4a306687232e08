package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/posts", h.CreatePost, requireUser)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // published posts, or one author's with ?author_id=
	g.PUT("/posts/:id", h.UpdatePost, requireUser)
	g.DELETE("/posts/:id", h.DeletePost, requireUser)
	g.PATCH("/posts/:id/publish", h.PublishPost, requireUser)
	g.PATCH("/posts/:id/schedule", h.SchedulePost, requireUser)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Post created successfully", post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postService.GetPost(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post fetched successfully", post)
}

// GetPosts retrieves multiple posts
func (h *PostHandler) GetPosts(c echo.Context) error {
	var q models.PostListQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	p := models.PageRequest{Page: q.Page, Limit: q.Limit}
	if err := checkPage(p); err != nil {
		return err
	}

	page, err := h.postService.ListPosts(c.Request().Context(), q.AuthorID, currentUserID(c), p)
	if err != nil {
		return err
	}
	return respondPage(c, "Posts fetched successfully", page.Posts, page.Pagination)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post updated successfully", post)
}

// PublishPost makes a draft or scheduled post live now
func (h *PostHandler) PublishPost(c echo.Context) error {
	post, err := h.postService.PublishPost(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post published successfully", post)
}

// SchedulePost sets a future publication date
func (h *PostHandler) SchedulePost(c echo.Context) error {
	var req models.SchedulePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.SchedulePost(c.Request().Context(), c.Param("id"), currentUserID(c), req.PublishAt)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post scheduled successfully", post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.postService.DeletePost(c.Request().Context(), c.Param("id"), currentUserID(c), isAdmin(c)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post deleted successfully", nil)
}
