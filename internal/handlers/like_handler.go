package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeService *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeService *services.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/likes", h.ToggleLike, requireUser)
	g.GET("/likes/count", h.GetLikesCount)
	g.GET("/likes/check", h.CheckLiked, requireUser)
	g.GET("/likes/users/:user_id", h.GetUserLikes, requireUser)
}

// ToggleLike likes the target, or removes the like if it exists
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	var req models.ToggleLikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	liked, err := h.likeService.ToggleLike(c.Request().Context(), currentUserID(c), req.TargetType, req.TargetID)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("%s unliked successfully", req.TargetType)
	if liked {
		msg = fmt.Sprintf("%s liked successfully", req.TargetType)
	}
	return respond(c, http.StatusOK, msg, echo.Map{"liked": liked})
}

// GetLikesCount counts the likes of a target
func (h *LikeHandler) GetLikesCount(c echo.Context) error {
	var q models.LikeTargetQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	count, err := h.likeService.LikesCount(c.Request().Context(), q.TargetType, q.TargetID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Likes count fetched successfully", echo.Map{"count": count})
}

// CheckLiked reports whether the authenticated user likes a target
func (h *LikeHandler) CheckLiked(c echo.Context) error {
	var q models.LikeTargetQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	liked, err := h.likeService.IsLiked(c.Request().Context(), currentUserID(c), q.TargetType, q.TargetID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Like status checked successfully", echo.Map{"liked": liked})
}

// GetUserLikes lists a user's likes, optionally of one target type
func (h *LikeHandler) GetUserLikes(c echo.Context) error {
	userID, err := userIDParam(c, "user_id")
	if err != nil {
		return err
	}
	p, err := pageRequest(c)
	if err != nil {
		return err
	}

	res, err := h.likeService.UserLikes(c.Request().Context(), userID, c.QueryParam("target_type"), p)
	if err != nil {
		return err
	}
	return respondPage(c, "User likes fetched successfully", res.Likes, res.Pagination)
}
