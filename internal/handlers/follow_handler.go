package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles HTTP requests related to following users
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/users/:id/follow", h.FollowUser, requireUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser, requireUser)
	g.GET("/users/:id/followers", h.GetFollowers, requireUser)
	g.GET("/users/:id/following", h.GetFollowing, requireUser)
	g.GET("/users/:id/follow-counts", h.GetFollowCounts, requireUser)
	g.GET("/users/:id/is-following", h.CheckIsFollowing, requireUser)
}

func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.followService.Follow(c.Request().Context(), currentUserID(c), targetID); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User followed successfully", nil)
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.followService.Unfollow(c.Request().Context(), currentUserID(c), targetID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User unfollowed successfully", nil)
}

// GetFollowers lists who follows the user in the path
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	p, err := pageRequest(c)
	if err != nil {
		return err
	}

	page, err := h.followService.Followers(c.Request().Context(), userID, p)
	if err != nil {
		return err
	}
	return respondPage(c, "Followers fetched successfully", page.Users, page.Pagination)
}

// GetFollowing lists who the user in the path follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	p, err := pageRequest(c)
	if err != nil {
		return err
	}

	page, err := h.followService.Following(c.Request().Context(), userID, p)
	if err != nil {
		return err
	}
	return respondPage(c, "Following fetched successfully", page.Users, page.Pagination)
}

func (h *FollowHandler) GetFollowCounts(c echo.Context) error {
	userID, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	counts, err := h.followService.FollowCounts(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Follow counts fetched successfully", counts)
}

// CheckIsFollowing reports whether the caller follows the user in the path
func (h *FollowHandler) CheckIsFollowing(c echo.Context) error {
	userID, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	following, err := h.followService.IsFollowing(c.Request().Context(), currentUserID(c), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Follow status checked successfully", echo.Map{"is_following": following})
}
