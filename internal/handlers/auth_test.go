package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "handler-secret"

func newUserRepo(t *testing.T) *repositories.PostgresUserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return repositories.NewPostgresUserRepository(db)
}

type tokenBody struct {
	Message string `json:"message"`
	Data    struct {
		Token string             `json:"token"`
		User  models.UserCompact `json:"user"`
	} `json:"data"`
}

func TestAuthHandler(t *testing.T) {
	repo := newUserRepo(t)
	e := newTestEcho()
	NewAuthHandler(repo, nil, testSecret).RegisterAuthRoutes(e.Group("/auth"))

	signup := `{"name":"Ada","email":"Ada@Example.com","password":"correct horse"}`
	rec := do(e, http.MethodPost, "/auth/signup", "", strings.NewReader(signup))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[tokenBody](t, rec)
	assert.Equal(t, "ada@example.com", created.Data.User.Email)

	claims, err := middleware.JWTParser(testSecret)(context.Background(), created.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Data.User.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	rec = do(e, http.MethodPost, "/auth/signup", "", strings.NewReader(signup))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signup", "", strings.NewReader(`{"name":"B","email":"bad","password":"short"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signin", "", strings.NewReader(`{"email":"ada@example.com","password":"wrong password"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signin", "", strings.NewReader(`{"email":"nobody@example.com","password":"whatever1"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signin", "", strings.NewReader(`{"email":"ada@example.com","password":"correct horse"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[tokenBody](t, rec).Data.Token)

	// Firebase login is only routed when a verifier is configured.
	rec = do(e, http.MethodPost, "/auth/firebase-login", "", strings.NewReader(`{"idToken":"x"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
