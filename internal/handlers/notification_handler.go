package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, requireUser)
	g.GET("/notifications/unread-count", h.GetUnreadCount, requireUser)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead, requireUser)
	g.PATCH("/notifications/:id/read", h.MarkAsRead, requireUser)
}

// GetNotifications lists the caller's notifications newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	var q models.NotificationQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	p := models.PageRequest{Page: q.Page, Limit: q.Limit}
	if err := checkPage(p); err != nil {
		return err
	}

	list, err := h.notificationService.List(c.Request().Context(), currentUserID(c), p, q.UnreadOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Notifications fetched successfully",
		"data":        list.Notifications,
		"unreadCount": list.UnreadCount,
		"pagination":  list.Pagination,
	})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationService.UnreadCount(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Unread count fetched successfully", echo.Map{"unreadCount": count})
}

// MarkAsRead flags one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	n, err := h.notificationService.MarkAsRead(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Notification marked as read", n)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	changed, err := h.notificationService.MarkAllAsRead(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "All notifications marked as read", echo.Map{"updated": changed})
}
