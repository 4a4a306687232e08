package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 72 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   middleware.IDTokenVerifier // nil when Firebase is not configured
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth middleware.IDTokenVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := strings.ToLower(req.Email)

	if _, err := h.userRepository.GetUserByEmail(ctx, email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    email,
		Role:     models.RoleUser,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user").SetInternal(err)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup").SetInternal(err)
	}
	return respond(c, http.StatusCreated, "User registered successfully", echo.Map{"token": token, "user": user.ToCompact()})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}
	return respond(c, http.StatusOK, "Signed in successfully", echo.Map{"token": token, "user": user.ToCompact()})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local
// account and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	uid := token.UID
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
		if name != "" && name != user.Name {
			user.Name = name
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				logger.Warn("update firebase user name", zap.Uint("user_id", user.ID), zap.Error(err))
			}
		}
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.linkFirebaseUser(c, uid, email, name)
		if err != nil {
			return err
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT").SetInternal(err)
	}
	return respond(c, http.StatusOK, "Signed in successfully", echo.Map{"token": localJWT, "user": user.ToCompact()})
}

// linkFirebaseUser attaches uid to the account with the same email, or creates
// a new account.
func (h *AuthHandler) linkFirebaseUser(c echo.Context, uid, email, name string) (*models.User, error) {
	ctx := c.Request().Context()
	if email == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email")
	}

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = &uid
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user with Firebase UID").SetInternal(err)
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}

	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user = &models.User{Name: name, Email: email, Role: models.RoleUser, FirebaseUID: &uid}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user").SetInternal(err)
	}
	return user, nil
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
