package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// QueueStats reports the notification backlog. *services.Dispatcher
// satisfies it.
type QueueStats interface {
	QueueLen() int
}

// HealthCheck reports liveness and the pending notification count.
func HealthCheck(queue QueueStats) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := echo.Map{
			"status":  "healthy",
			"service": "inkwell-api",
		}
		if queue != nil {
			body["pending_notifications"] = queue.QueueLen()
		}
		return c.JSON(http.StatusOK, body)
	}
}
