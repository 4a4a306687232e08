package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler handles HTTP requests for a user's saved posts
type BookmarkHandler struct {
	bookmarkService *services.BookmarkService
}

func NewBookmarkHandler(bookmarkService *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// RegisterBookmarkRoutes registers bookmark routes. All of them need a user.
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/posts/:id/bookmark", h.AddBookmark, requireUser)
	g.DELETE("/posts/:id/bookmark", h.RemoveBookmark, requireUser)
	g.GET("/posts/:id/bookmark", h.CheckBookmarked, requireUser)
	g.GET("/bookmarks", h.GetBookmarks, requireUser)
}

func (h *BookmarkHandler) AddBookmark(c echo.Context) error {
	if err := h.bookmarkService.AddBookmark(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Post bookmarked successfully", nil)
}

func (h *BookmarkHandler) RemoveBookmark(c echo.Context) error {
	if err := h.bookmarkService.RemoveBookmark(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Bookmark removed successfully", nil)
}

func (h *BookmarkHandler) CheckBookmarked(c echo.Context) error {
	ok, err := h.bookmarkService.IsBookmarked(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Bookmark status checked successfully", echo.Map{"is_bookmarked": ok})
}

// GetBookmarks lists the caller's bookmarks with their posts
func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return err
	}
	page, err := h.bookmarkService.Bookmarks(c.Request().Context(), currentUserID(c), p)
	if err != nil {
		return err
	}
	return respondPage(c, "Bookmarks fetched successfully", page.Bookmarks, page.Pagination)
}
