package validators

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomValidator plugs go-playground/validator into Echo's c.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that also understands the "objectid" tag.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, describe(err))
	}
	return nil
}

// describe flattens validation errors into one readable line.
func describe(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg := fe.Field() + " failed on '" + fe.Tag() + "'"
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
