package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Response is the success envelope of every endpoint.
type Response struct {
	Message    string             `json:"message"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the failure envelope written by ErrorHandler.
type ErrorResponse struct {
	Message       string `json:"message"`
	Success       bool   `json:"success"`
	IsClientError bool   `json:"isClientError"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Message: message, Data: data})
}

func respondPage(c echo.Context, message string, data interface{}, p models.Pagination) error {
	return c.JSON(http.StatusOK, Response{Message: message, Data: data, Pagination: &p})
}

// ErrorHandler replaces echo's default error handler. Service errors map by
// kind, echo errors keep their code, anything else is a 500 whose detail is
// only logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var ae *apperror.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		status = ae.Kind.Status()
		if ae.Kind != apperror.KindInternal {
			message = ae.Message
		}
	case errors.As(err, &he):
		status = he.Code
		if he.Internal != nil && status >= http.StatusInternalServerError {
			err = he.Internal
		}
		message = fmt.Sprint(he.Message)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Message: message, IsClientError: status < http.StatusInternalServerError})
	}
	if err != nil {
		logger.Warn("write error response", zap.Error(err))
	}
}

// currentUserID is the authenticated user's ID, 0 for anonymous requests.
func currentUserID(c echo.Context) uint {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func isAdmin(c echo.Context) bool {
	claims := middleware.Claims(c)
	return claims != nil && claims.Role == models.RoleAdmin
}

func userIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	return uint(id), nil
}

// pageRequest reads page and limit from the query string.
func pageRequest(c echo.Context) (models.PageRequest, error) {
	var p models.PageRequest
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	return p, checkPage(p)
}

func checkPage(p models.PageRequest) error {
	if p.Page > models.MaxPage {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("page must not exceed %d", models.MaxPage))
	}
	return nil
}

// bindAndValidate binds the request into v and runs the registered validator.
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(v)
}
