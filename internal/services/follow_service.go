package services

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

type FollowService struct {
	follows  repositories.FollowRepository
	users    UserDirectory
	notifier Notifier
}

func NewFollowService(follows repositories.FollowRepository, users UserDirectory, notifier Notifier) *FollowService {
	return &FollowService{follows: follows, users: users, notifier: notifier}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return apperror.Validation("you cannot follow yourself")
	}
	if _, err := s.users.Profile(ctx, followingID); err != nil {
		return notFoundOr(err, "User not found")
	}

	exists, err := s.follows.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return internal(err)
	}
	if exists {
		return apperror.Conflict("already following this user")
	}

	err = s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, FollowingID: followingID})
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperror.Conflict("already following this user")
	}
	if err != nil {
		return internal(err)
	}

	s.notifier.Emit(NotificationEvent{
		Type:        models.NotificationFollow,
		RecipientID: followingID,
		ActorID:     followerID,
	})
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	removed, err := s.follows.DeleteFollow(ctx, followerID, followingID)
	if err != nil {
		return internal(err)
	}
	if !removed {
		return apperror.Conflict("not following this user")
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, internal(err)
	}
	return ok, nil
}

type FollowPage struct {
	Users      []models.UserCompact `json:"users"`
	Pagination models.Pagination    `json:"pagination"`
}

// Followers lists who follows userID, newest first.
func (s *FollowService) Followers(ctx context.Context, userID uint, p models.PageRequest) (*FollowPage, error) {
	return s.page(ctx, p,
		func(ctx context.Context, skip, limit int64) ([]models.Follow, error) {
			return s.follows.ListFollowers(ctx, userID, skip, limit)
		},
		func(ctx context.Context) (int64, error) { return s.follows.CountFollowers(ctx, userID) },
		func(f models.Follow) uint { return f.FollowerID },
	)
}

// Following lists whom userID follows, newest first.
func (s *FollowService) Following(ctx context.Context, userID uint, p models.PageRequest) (*FollowPage, error) {
	return s.page(ctx, p,
		func(ctx context.Context, skip, limit int64) ([]models.Follow, error) {
			return s.follows.ListFollowing(ctx, userID, skip, limit)
		},
		func(ctx context.Context) (int64, error) { return s.follows.CountFollowing(ctx, userID) },
		func(f models.Follow) uint { return f.FollowingID },
	)
}

func (s *FollowService) page(
	ctx context.Context,
	p models.PageRequest,
	list func(ctx context.Context, skip, limit int64) ([]models.Follow, error),
	count func(ctx context.Context) (int64, error),
	counterpart func(models.Follow) uint,
) (*FollowPage, error) {
	p = p.Normalize()

	var (
		edges []models.Follow
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		edges, err = list(gctx, p.Skip(), int64(p.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, counterpart(e))
	}
	profiles, err := s.users.Profiles(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}

	users := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if u, ok := profiles[id]; ok {
			users = append(users, u)
		}
	}
	return &FollowPage{Users: users, Pagination: models.NewPagination(p, total)}, nil
}

// FollowCounts counts both directions live and concurrently.
func (s *FollowService) FollowCounts(ctx context.Context, userID uint) (*models.FollowCounts, error) {
	var counts models.FollowCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts.FollowersCount, err = s.follows.CountFollowers(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		counts.FollowingCount, err = s.follows.CountFollowing(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}
	return &counts, nil
}
