// Package services holds the social-interaction rules: the like toggle and
// its counters, the comment tree, the follow graph, bookmarks and the
// notification fan-out. Services depend on repository interfaces only.
package services

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDirectory resolves user ids to public profiles.
// repositories.UserDirectory satisfies it.
type UserDirectory interface {
	Profile(ctx context.Context, id uint) (*models.UserCompact, error)
	Profiles(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error)
}

// Notifier accepts notification events without blocking the caller.
type Notifier interface {
	Emit(ev NotificationEvent) bool
}

func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := repositories.ParseObjectID(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("invalid %s id", what)
	}
	return id, nil
}

// notFoundOr maps repositories.ErrNotFound to a NotFound error with msg and
// anything else to an internal error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound("%s", msg)
	}
	return apperror.Internal(err, "database error")
}

// visiblePost loads a post the requester may see or interact with. Posts that
// are not published exist only for their author.
func visiblePost(ctx context.Context, posts repositories.PostRepository, id primitive.ObjectID, requesterID uint) (*models.Post, error) {
	post, err := posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	if post.Status != models.PostStatusPublished && post.AuthorID != requesterID {
		return nil, apperror.NotFound("Post not found")
	}
	return post, nil
}

func internal(err error) error {
	return apperror.Internal(err, "database error")
}

func profilePtr(profiles map[uint]models.UserCompact, id uint) *models.UserCompact {
	p, ok := profiles[id]
	if !ok {
		return nil
	}
	return &p
}

func oidPtr(id primitive.ObjectID) *primitive.ObjectID { return &id }
