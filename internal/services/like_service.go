package services

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type LikeService struct {
	likes    repositories.LikeRepository
	targets  *TargetRegistry
	notifier Notifier
}

func NewLikeService(likes repositories.LikeRepository, targets *TargetRegistry, notifier Notifier) *LikeService {
	return &LikeService{likes: likes, targets: targets, notifier: notifier}
}

// ToggleLike flips the actor's like on the target and reports the new state.
func (s *LikeService) ToggleLike(ctx context.Context, actorID uint, kind, rawID string) (bool, error) {
	target, err := s.targets.ParseTarget(kind, rawID)
	if err != nil {
		return false, err
	}
	accessor, _ := s.targets.Accessor(target.Kind)
	info, err := accessor.Resolve(ctx, target.ID, actorID)
	if err != nil {
		return false, err
	}

	outcome, err := Toggle(ctx, Relation[models.Like]{
		Find: func(ctx context.Context) (*models.Like, error) {
			return s.likes.FindLike(ctx, actorID, target.Kind, target.ID)
		},
		Create: func(ctx context.Context) error {
			return s.likes.CreateLike(ctx, &models.Like{UserID: actorID, TargetType: target.Kind, TargetID: target.ID})
		},
		Delete: func(ctx context.Context, existing *models.Like) (bool, error) {
			return s.likes.DeleteLike(ctx, existing.ID)
		},
	})
	if err != nil {
		return false, internal(err)
	}

	if outcome.Owned() {
		delta := 1
		if outcome == Removed {
			delta = -1
		}
		// The relation row is authoritative; a failed counter update is
		// logged and left for reconciliation.
		if err := accessor.AdjustLikes(ctx, target.ID, delta); err != nil {
			logger.Error("likes counter update failed",
				zap.String("target_type", string(target.Kind)),
				zap.String("target_id", target.ID.Hex()),
				zap.Int("delta", delta),
				zap.Error(err))
		}
	}

	if outcome == Created {
		ev := NotificationEvent{
			Type:        models.NotificationLike,
			RecipientID: info.OwnerID,
			ActorID:     actorID,
			TargetKind:  target.Kind,
			Subject:     info.Title,
			CommentID:   info.CommentID,
		}
		if target.Kind == models.TargetPost {
			ev.PostID = oidPtr(info.PostID)
		}
		s.notifier.Emit(ev)
	}
	return outcome.Present(), nil
}

// LikesCount counts relation rows, not the cached counter.
func (s *LikeService) LikesCount(ctx context.Context, kind, rawID string) (int64, error) {
	target, err := s.targets.ParseTarget(kind, rawID)
	if err != nil {
		return 0, err
	}
	n, err := s.likes.CountLikes(ctx, target.Kind, target.ID)
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}

func (s *LikeService) IsLiked(ctx context.Context, actorID uint, kind, rawID string) (bool, error) {
	target, err := s.targets.ParseTarget(kind, rawID)
	if err != nil {
		return false, err
	}
	_, err = s.likes.FindLike(ctx, actorID, target.Kind, target.ID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, internal(err)
	}
}

type UserLikes struct {
	Likes      []models.LikeView `json:"likes"`
	Pagination models.Pagination `json:"pagination"`
}

// UserLikes lists the user's likes newest first with each target attached.
// kind may be empty to include both kinds. Likes of deleted targets are kept
// with a nil Target.
func (s *LikeService) UserLikes(ctx context.Context, userID uint, kind string, p models.PageRequest) (*UserLikes, error) {
	p = p.Normalize()
	tt := models.TargetType(kind)
	if tt != "" {
		if _, err := s.targets.Accessor(tt); err != nil {
			return nil, err
		}
	}

	var (
		likes []models.Like
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likes, err = s.likes.ListByUser(gctx, userID, tt, p.Skip(), int64(p.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.likes.CountByUser(gctx, userID, tt)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}

	byKind := make(map[models.TargetType][]primitive.ObjectID)
	for _, l := range likes {
		byKind[l.TargetType] = append(byKind[l.TargetType], l.TargetID)
	}
	docs := make(map[models.TargetType]map[primitive.ObjectID]interface{}, len(byKind))
	for k, ids := range byKind {
		accessor, err := s.targets.Accessor(k)
		if err != nil {
			continue
		}
		loaded, err := accessor.Load(ctx, ids)
		if err != nil {
			return nil, internal(err)
		}
		docs[k] = loaded
	}

	views := make([]models.LikeView, 0, len(likes))
	for _, l := range likes {
		views = append(views, models.LikeView{Like: l, Target: docs[l.TargetType][l.TargetID]})
	}
	return &UserLikes{Likes: views, Pagination: models.NewPagination(p, total)}, nil
}
