package middleware

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"go.uber.org/zap"
)

// IDTokenVerifier is the part of the Firebase auth client the API needs.
// *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUsers maps Firebase UIDs to local accounts.
type FirebaseUsers interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseParser accepts Firebase ID tokens whose UID is linked to a local
// account. Linking happens at /auth/firebase-login.
func FirebaseParser(verifier IDTokenVerifier, users FirebaseUsers) TokenParser {
	return func(ctx context.Context, idToken string) (*models.JwtCustomClaims, error) {
		token, err := verifier.VerifyIDToken(ctx, idToken)
		if err != nil {
			return nil, ErrTokenInvalid
		}

		user, err := users.GetUserByFirebaseUID(ctx, token.UID)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				logger.Error("firebase user lookup", zap.String("uid", token.UID), zap.Error(err))
			}
			return nil, ErrTokenInvalid
		}
		return &models.JwtCustomClaims{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
	}
}
