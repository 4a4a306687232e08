package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ProfileDirectory serves public profiles and drops cached copies on change.
// *repositories.UserDirectory satisfies it.
type ProfileDirectory interface {
	Profile(ctx context.Context, id uint) (*models.UserCompact, error)
	Invalidate(ctx context.Context, id uint)
}

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	directory      ProfileDirectory
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, directory ProfileDirectory) *UserHandler {
	return &UserHandler{userRepository: userRepo, directory: directory}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/profile", h.GetProfile, requireUser)
	g.PUT("/profile", h.UpdateProfile, requireUser)
	g.DELETE("/profile", h.DeleteProfile, requireUser)
	g.GET("/users/:id", h.GetUser)
}

// GetUser returns another user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := userIDParam(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.directory.Profile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}
	return respond(c, http.StatusOK, "User fetched successfully", profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}
	return respond(c, http.StatusOK, "Profile fetched successfully", user)
}

// UpdateProfile changes the caller's name or avatar
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, currentUserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile").SetInternal(err)
	}
	h.directory.Invalidate(ctx, user.ID)

	return respond(c, http.StatusOK, "Profile updated successfully", user)
}

// DeleteProfile removes the caller's account. Posts, comments and relations
// that reference it stay; listings skip the missing profile.
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	if err := h.userRepository.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete user").SetInternal(err)
	}
	h.directory.Invalidate(ctx, userID)

	return respond(c, http.StatusOK, "Account deleted successfully", nil)
}
