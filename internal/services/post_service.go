package services

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"go.uber.org/zap"
)

// PostService is the thin CRUD layer over posts. Likes and comments hang off
// posts but are owned by their own services.
type PostService struct {
	posts repositories.PostRepository
	users UserDirectory
}

func NewPostService(posts repositories.PostRepository, users UserDirectory) *PostService {
	return &PostService{posts: posts, users: users}
}

// CreatePost stores a new post. A scheduled post needs a future publication
// date.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.PostView, error) {
	if req.Status == models.PostStatusScheduled && (req.PublishedAt == nil || !req.PublishedAt.After(time.Now())) {
		return nil, apperror.Validation("Scheduled date must be in the future")
	}
	post := &models.Post{
		AuthorID:    authorID,
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Status:      req.Status,
		PublishedAt: req.PublishedAt,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, internal(err)
	}
	return s.view(ctx, post), nil
}

// GetPost returns a post and counts the view. Drafts are only visible to
// their author.
func (s *PostService) GetPost(ctx context.Context, rawID string, requesterID uint) (*models.PostView, error) {
	id, err := parseID(rawID, "post")
	if err != nil {
		return nil, err
	}
	post, err := visiblePost(ctx, s.posts, id, requesterID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != requesterID {
		if err := s.posts.IncrementViewsCount(ctx, id); err != nil {
			logger.Warn("increment views count", zap.String("post_id", rawID), zap.Error(err))
		} else {
			post.ViewsCount++
		}
	}
	return s.view(ctx, post), nil
}

type PostPage struct {
	Posts      []models.PostView `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

// ListPosts lists published posts, newest first. With authorID set only that
// author's posts are listed, drafts included when the author asks.
func (s *PostService) ListPosts(ctx context.Context, authorID, requesterID uint, p models.PageRequest) (*PostPage, error) {
	p = p.Normalize()

	var (
		posts []models.Post
		total int64
		err   error
	)
	if authorID != 0 {
		posts, total, err = s.posts.ListByAuthor(ctx, authorID, authorID == requesterID, p.Skip(), int64(p.Limit))
	} else {
		posts, total, err = s.posts.ListPublished(ctx, p.Skip(), int64(p.Limit))
	}
	if err != nil {
		return nil, internal(err)
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.AuthorID)
	}
	profiles, err := s.users.Profiles(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}

	out := make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		out = append(out, models.PostView{Post: post, Author: profilePtr(profiles, post.AuthorID)})
	}
	return &PostPage{Posts: out, Pagination: models.NewPagination(p, total)}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, rawID string, requesterID uint, req models.UpdatePostRequest) (*models.PostView, error) {
	id, err := parseID(rawID, "post")
	if err != nil {
		return nil, err
	}
	existing, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	if existing.AuthorID != requesterID {
		return nil, apperror.Unauthorized("you are not authorized to update this post")
	}

	post, err := s.posts.UpdatePost(ctx, id, req)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	return s.view(ctx, post), nil
}

// PublishPost publishes the post now, replacing any scheduled date.
func (s *PostService) PublishPost(ctx context.Context, rawID string, requesterID uint) (*models.PostView, error) {
	existing, err := s.ownedPost(ctx, rawID, requesterID, "publish")
	if err != nil {
		return nil, err
	}
	if existing.Status == models.PostStatusPublished {
		return nil, apperror.Validation("Post is already published")
	}

	post, err := s.posts.SetPublication(ctx, existing.ID, models.PostStatusPublished, time.Now().UTC())
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	return s.view(ctx, post), nil
}

// SchedulePost sets the post to go live at publishAt, which must lie in the
// future. PostPublisher flips it to published once the date passes.
func (s *PostService) SchedulePost(ctx context.Context, rawID string, requesterID uint, publishAt time.Time) (*models.PostView, error) {
	existing, err := s.ownedPost(ctx, rawID, requesterID, "schedule")
	if err != nil {
		return nil, err
	}
	if !publishAt.After(time.Now()) {
		return nil, apperror.Validation("Scheduled date must be in the future")
	}

	post, err := s.posts.SetPublication(ctx, existing.ID, models.PostStatusScheduled, publishAt.UTC())
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	return s.view(ctx, post), nil
}

func (s *PostService) ownedPost(ctx context.Context, rawID string, requesterID uint, action string) (*models.Post, error) {
	id, err := parseID(rawID, "post")
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	if post.AuthorID != requesterID {
		return nil, apperror.Unauthorized("you are not authorized to %s this post", action)
	}
	return post, nil
}

// DeletePost removes a post. The author and admins may delete. Likes,
// comments and bookmarks pointing at it are left for the readers to skip.
func (s *PostService) DeletePost(ctx context.Context, rawID string, requesterID uint, isAdmin bool) error {
	id, err := parseID(rawID, "post")
	if err != nil {
		return err
	}
	existing, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}
	if existing.AuthorID != requesterID && !isAdmin {
		return apperror.Unauthorized("you are not authorized to delete this post")
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return notFoundOr(err, "Post not found")
	}
	return nil
}

func (s *PostService) view(ctx context.Context, post *models.Post) *models.PostView {
	v := &models.PostView{Post: *post}
	if p, err := s.users.Profile(ctx, post.AuthorID); err == nil {
		v.Author = p
	}
	return v
}
