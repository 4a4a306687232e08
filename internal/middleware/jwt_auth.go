package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// UserContextKey is where the authenticated claims live on echo.Context.
const UserContextKey = "user"

var (
	ErrTokenExpired = errors.New("Token has expired")
	ErrTokenInvalid = errors.New("Invalid token")
)

// TokenParser turns a bearer token into claims.
type TokenParser func(ctx context.Context, token string) (*models.JwtCustomClaims, error)

// JWTParser accepts HS256 tokens signed with secret.
func JWTParser(secret string) TokenParser {
	return func(_ context.Context, tokenString string) (*models.JwtCustomClaims, error) {
		claims := &models.JwtCustomClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrTokenExpired
			}
			return nil, ErrTokenInvalid
		}
		if !token.Valid || claims.UserID == 0 {
			return nil, ErrTokenInvalid
		}
		return claims, nil
	}
}

// Authenticate resolves the bearer token, if any, with the first parser that
// accepts it and stores the claims under UserContextKey. Requests without an
// Authorization header pass through anonymously; RequireUser rejects them
// where a user is needed.
func Authenticate(parsers ...TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			var lastErr error = ErrTokenInvalid
			for _, parse := range parsers {
				claims, err := parse(c.Request().Context(), parts[1])
				if err == nil {
					c.Set(UserContextKey, claims)
					return next(c)
				}
				if !errors.Is(lastErr, ErrTokenExpired) {
					lastErr = err
				}
			}
			return echo.NewHTTPError(http.StatusUnauthorized, lastErr.Error())
		}
	}
}

// RequireUser rejects requests that Authenticate left anonymous.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Claims(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required. Please provide a valid token")
		}
		return next(c)
	}
}

// Claims returns the authenticated claims or nil.
func Claims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(UserContextKey).(*models.JwtCustomClaims)
	return claims
}
