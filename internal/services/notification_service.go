package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

type NotificationList struct {
	Notifications []models.NotificationView `json:"notifications"`
	UnreadCount   int64                     `json:"unread_count"`
	Pagination    models.Pagination         `json:"pagination"`
}

type NotificationService struct {
	repo  repositories.NotificationRepository
	users UserDirectory
}

func NewNotificationService(repo repositories.NotificationRepository, users UserDirectory) *NotificationService {
	return &NotificationService{repo: repo, users: users}
}

// List returns a page of the user's notifications with the total and the
// unread count read alongside it.
func (s *NotificationService) List(ctx context.Context, userID uint, p models.PageRequest, unreadOnly bool) (*NotificationList, error) {
	p = p.Normalize()

	var (
		items  []models.Notification
		total  int64
		unread int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, userID, unreadOnly, p.Skip(), int64(p.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, userID, unreadOnly)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = s.repo.Count(gctx, userID, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}

	actorIDs := make([]uint, 0, len(items))
	for _, n := range items {
		actorIDs = append(actorIDs, n.RelatedUserID)
	}
	profiles, err := s.users.Profiles(ctx, actorIDs)
	if err != nil {
		return nil, internal(err)
	}

	views := make([]models.NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, models.NotificationView{Notification: n, Actor: profilePtr(profiles, n.RelatedUserID)})
	}
	return &NotificationList{
		Notifications: views,
		UnreadCount:   unread,
		Pagination:    models.NewPagination(p, total),
	}, nil
}

// MarkAsRead marks one of the user's notifications read. A notification
// owned by someone else is indistinguishable from a missing one.
func (s *NotificationService) MarkAsRead(ctx context.Context, rawID string, userID uint) (*models.Notification, error) {
	id, err := parseID(rawID, "notification")
	if err != nil {
		return nil, err
	}
	n, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, "Notification not found")
	}
	return n, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.Count(ctx, userID, true)
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}
