package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/comments", h.CreateComment, requireUser)
	g.GET("/comments/:id", h.GetComment)
	g.PATCH("/comments/:id", h.UpdateComment, requireUser)
	g.DELETE("/comments/:id", h.DeleteComment, requireUser)
	g.GET("/posts/:id/comments", h.GetCommentsByPost)
}

// CreateComment adds a root comment or a reply
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Comment created successfully", comment)
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	comment, err := h.commentService.GetComment(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment fetched successfully", comment)
}

// UpdateComment edits the content of the caller's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.UpdateComment(c.Request().Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment updated successfully", comment)
}

// DeleteComment removes a comment with all of its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.commentService.DeleteComment(c.Request().Context(), c.Param("id"), currentUserID(c)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment deleted successfully", nil)
}

// GetCommentsByPost lists a post's root comments with their replies
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return err
	}

	page, err := h.commentService.CommentsByPost(c.Request().Context(), c.Param("id"), currentUserID(c), p)
	if err != nil {
		return err
	}
	return respondPage(c, "Comments fetched successfully", page.Comments, page.Pagination)
}
