package services

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Target identifies a likeable record.
type Target struct {
	Kind models.TargetType
	ID   primitive.ObjectID
}

// TargetInfo is what the like flow needs to know about a resolved target.
type TargetInfo struct {
	OwnerID   uint
	Title     string
	PostID    primitive.ObjectID
	CommentID *primitive.ObjectID
}

// TargetAccessor reads and adjusts one kind of target.
type TargetAccessor interface {
	// Resolve fails with NotFound when the target does not exist or sits on a
	// post the actor cannot see.
	Resolve(ctx context.Context, id primitive.ObjectID, actorID uint) (*TargetInfo, error)
	AdjustLikes(ctx context.Context, id primitive.ObjectID, delta int) error
	// Load returns the documents that still exist among ids.
	Load(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]interface{}, error)
}

// TargetRegistry dispatches on Target.Kind.
type TargetRegistry struct {
	accessors map[models.TargetType]TargetAccessor
}

func NewTargetRegistry(posts repositories.PostRepository, comments repositories.CommentRepository) *TargetRegistry {
	return &TargetRegistry{accessors: map[models.TargetType]TargetAccessor{
		models.TargetPost:    postTarget{posts: posts},
		models.TargetComment: commentTarget{comments: comments, posts: posts},
	}}
}

// Accessor returns the accessor for kind or a validation error.
func (r *TargetRegistry) Accessor(kind models.TargetType) (TargetAccessor, error) {
	a, ok := r.accessors[kind]
	if !ok {
		return nil, apperror.Validation("invalid target type")
	}
	return a, nil
}

// ParseTarget validates the raw kind and id pair.
func (r *TargetRegistry) ParseTarget(kind, rawID string) (Target, error) {
	if _, err := r.Accessor(models.TargetType(kind)); err != nil {
		return Target{}, err
	}
	id, err := parseID(rawID, "target")
	if err != nil {
		return Target{}, err
	}
	return Target{Kind: models.TargetType(kind), ID: id}, nil
}

type postTarget struct {
	posts repositories.PostRepository
}

func (t postTarget) Resolve(ctx context.Context, id primitive.ObjectID, actorID uint) (*TargetInfo, error) {
	post, err := visiblePost(ctx, t.posts, id, actorID)
	if err != nil {
		return nil, err
	}
	return &TargetInfo{OwnerID: post.AuthorID, Title: post.Title, PostID: post.ID}, nil
}

func (t postTarget) AdjustLikes(ctx context.Context, id primitive.ObjectID, delta int) error {
	if delta < 0 {
		return t.posts.DecrementLikesCount(ctx, id)
	}
	return t.posts.IncrementLikesCount(ctx, id)
}

func (t postTarget) Load(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]interface{}, error) {
	posts, err := t.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]interface{}, len(posts))
	for i := range posts {
		out[posts[i].ID] = &posts[i]
	}
	return out, nil
}

type commentTarget struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
}

const commentTitleLen = 50

func (t commentTarget) Resolve(ctx context.Context, id primitive.ObjectID, actorID uint) (*TargetInfo, error) {
	c, err := t.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	// Comments left behind by a deleted post stay likeable.
	post, err := t.posts.GetPostByID(ctx, c.PostID)
	switch {
	case err == nil:
		if post.Status != models.PostStatusPublished && post.AuthorID != actorID {
			return nil, apperror.NotFound("Comment not found")
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, internal(err)
	}
	title := []rune(c.Content)
	if len(title) > commentTitleLen {
		title = title[:commentTitleLen]
	}
	return &TargetInfo{OwnerID: c.UserID, Title: string(title), PostID: c.PostID, CommentID: oidPtr(c.ID)}, nil
}

func (t commentTarget) AdjustLikes(ctx context.Context, id primitive.ObjectID, delta int) error {
	if delta < 0 {
		return t.comments.DecrementLikesCount(ctx, id)
	}
	return t.comments.IncrementLikesCount(ctx, id)
}

func (t commentTarget) Load(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]interface{}, error) {
	comments, err := t.comments.GetCommentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]interface{}, len(comments))
	for i := range comments {
		out[comments[i].ID] = &comments[i]
	}
	return out, nil
}
