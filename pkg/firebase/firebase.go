// Package firebase verifies Firebase ID tokens for the API's optional
// Firebase login.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("firebase credentials path not provided")

type Options struct {
	CredentialsPath string
	// ProjectID overrides the project found in the credentials file.
	ProjectID string
	// CheckRevoked also rejects tokens revoked or belonging to disabled
	// accounts. Costs one Firebase round trip per verification.
	CheckRevoked bool
}

// tokenClient is the subset of *auth.Client used here.
type tokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier checks Firebase ID tokens.
type Verifier struct {
	client       tokenClient
	checkRevoked bool
}

// NewVerifier builds the Firebase app and auth client from a service account
// file.
func NewVerifier(ctx context.Context, opts Options) (*Verifier, error) {
	if opts.CredentialsPath == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(opts.CredentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file %s: %w", opts.CredentialsPath, err)
	}

	var cfg *firebase.Config
	if opts.ProjectID != "" {
		cfg = &firebase.Config{ProjectID: opts.ProjectID}
	}
	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsFile(opts.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	logger.Info("firebase token verification enabled",
		zap.String("project_id", opts.ProjectID),
		zap.Bool("check_revoked", opts.CheckRevoked))
	return &Verifier{client: client, checkRevoked: opts.CheckRevoked}, nil
}

// VerifyIDToken validates idToken and returns its decoded claims.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if v.checkRevoked {
		return v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	}
	return v.client.VerifyIDToken(ctx, idToken)
}
