package services

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type BookmarkService struct {
	bookmarks repositories.BookmarkRepository
	posts     repositories.PostRepository
}

func NewBookmarkService(bookmarks repositories.BookmarkRepository, posts repositories.PostRepository) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, posts: posts}
}

func (s *BookmarkService) AddBookmark(ctx context.Context, userID uint, rawPostID string) error {
	postID, err := parseID(rawPostID, "post")
	if err != nil {
		return err
	}
	if _, err := visiblePost(ctx, s.posts, postID, userID); err != nil {
		return err
	}

	exists, err := s.bookmarks.IsBookmarked(ctx, userID, postID)
	if err != nil {
		return internal(err)
	}
	if exists {
		return apperror.Conflict("post already bookmarked")
	}

	err = s.bookmarks.CreateBookmark(ctx, &models.Bookmark{UserID: userID, PostID: postID})
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperror.Conflict("post already bookmarked")
	}
	if err != nil {
		return internal(err)
	}
	return nil
}

func (s *BookmarkService) RemoveBookmark(ctx context.Context, userID uint, rawPostID string) error {
	postID, err := parseID(rawPostID, "post")
	if err != nil {
		return err
	}
	removed, err := s.bookmarks.DeleteBookmark(ctx, userID, postID)
	if err != nil {
		return internal(err)
	}
	if !removed {
		return apperror.NotFound("Bookmark not found")
	}
	return nil
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, userID uint, rawPostID string) (bool, error) {
	postID, err := parseID(rawPostID, "post")
	if err != nil {
		return false, err
	}
	ok, err := s.bookmarks.IsBookmarked(ctx, userID, postID)
	if err != nil {
		return false, internal(err)
	}
	return ok, nil
}

type BookmarkPage struct {
	Bookmarks  []models.BookmarkView `json:"bookmarks"`
	Pagination models.Pagination     `json:"pagination"`
}

// Bookmarks lists the user's bookmarks newest first. Bookmarks whose post was
// deleted are left out of the page; the total still counts them.
func (s *BookmarkService) Bookmarks(ctx context.Context, userID uint, p models.PageRequest) (*BookmarkPage, error) {
	p = p.Normalize()

	var (
		rows  []models.Bookmark
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.bookmarks.ListByUser(gctx, userID, p.Skip(), int64(p.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.bookmarks.CountByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.PostID)
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}
	byID := make(map[primitive.ObjectID]*models.Post, len(posts))
	for i := range posts {
		byID[posts[i].ID] = &posts[i]
	}

	views := make([]models.BookmarkView, 0, len(rows))
	for _, b := range rows {
		post, ok := byID[b.PostID]
		if !ok {
			continue
		}
		views = append(views, models.BookmarkView{BookmarkID: b.ID, BookmarkedAt: b.CreatedAt, Post: post})
	}
	return &BookmarkPage{Bookmarks: views, Pagination: models.NewPagination(p, total)}, nil
}
