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

const DefaultMaxNestingDepth = 3

type CommentService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	users    UserDirectory
	notifier Notifier
	maxDepth int
}

func NewCommentService(posts repositories.PostRepository, comments repositories.CommentRepository, users UserDirectory, notifier Notifier, maxDepth int) *CommentService {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}
	return &CommentService{posts: posts, comments: comments, users: users, notifier: notifier, maxDepth: maxDepth}
}

// CreateComment adds a root comment or a reply and notifies the post author
// and, for replies, the parent author.
func (s *CommentService) CreateComment(ctx context.Context, userID uint, req models.CreateCommentRequest) (*models.CommentView, error) {
	postID, err := parseID(req.PostID, "post")
	if err != nil {
		return nil, err
	}
	post, err := visiblePost(ctx, s.posts, postID, userID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if req.ParentCommentID != "" {
		parentID, err := parseID(req.ParentCommentID, "parent comment")
		if err != nil {
			return nil, err
		}
		parent, err = s.comments.GetCommentByID(ctx, parentID)
		if err != nil {
			return nil, notFoundOr(err, "Parent comment not found")
		}
		if parent.PostID != postID {
			return nil, apperror.Validation("parent comment does not belong to this post")
		}
		depth, err := s.depthOf(ctx, parent)
		if err != nil {
			return nil, internal(err)
		}
		if depth >= s.maxDepth {
			return nil, apperror.Validation("maximum nesting depth exceeded")
		}
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: req.Content}
	if parent != nil {
		comment.ParentCommentID = oidPtr(parent.ID)
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, internal(err)
	}

	s.notifier.Emit(NotificationEvent{
		Type:        models.NotificationComment,
		RecipientID: post.AuthorID,
		ActorID:     userID,
		PostID:      oidPtr(postID),
		CommentID:   oidPtr(comment.ID),
		Subject:     post.Title,
	})
	if parent != nil {
		s.notifier.Emit(NotificationEvent{
			Type:        models.NotificationReply,
			RecipientID: parent.UserID,
			ActorID:     userID,
			PostID:      oidPtr(postID),
			CommentID:   oidPtr(comment.ID),
		})
	}

	return &models.CommentView{Comment: *comment, Author: s.profile(ctx, userID), IsOwner: true}, nil
}

// depthOf counts the comments from parent up to its root, parent included.
// The walk stops at maxDepth so a corrupted parent cycle cannot loop.
func (s *CommentService) depthOf(ctx context.Context, parent *models.Comment) (int, error) {
	depth := 1
	next := parent.ParentCommentID
	for next != nil && depth < s.maxDepth {
		c, err := s.comments.GetCommentByID(ctx, *next)
		if errors.Is(err, repositories.ErrNotFound) {
			break
		}
		if err != nil {
			return 0, err
		}
		depth++
		next = c.ParentCommentID
	}
	return depth, nil
}

func (s *CommentService) GetComment(ctx context.Context, rawID string, requesterID uint) (*models.CommentView, error) {
	id, err := parseID(rawID, "comment")
	if err != nil {
		return nil, err
	}
	c, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	return &models.CommentView{Comment: *c, Author: s.profile(ctx, c.UserID), IsOwner: isOwner(c.UserID, requesterID)}, nil
}

// UpdateComment lets the author replace the content.
func (s *CommentService) UpdateComment(ctx context.Context, rawID string, requesterID uint, req models.UpdateCommentRequest) (*models.CommentView, error) {
	id, err := parseID(rawID, "comment")
	if err != nil {
		return nil, err
	}
	c, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	if c.UserID != requesterID {
		return nil, apperror.Unauthorized("you are not authorized to update this comment")
	}
	updated, err := s.comments.UpdateContent(ctx, id, req.Content)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	return &models.CommentView{Comment: *updated, Author: s.profile(ctx, updated.UserID), IsOwner: true}, nil
}

// DeleteComment removes the comment and its whole reply subtree. The comment
// author and the post author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, rawID string, requesterID uint) error {
	id, err := parseID(rawID, "comment")
	if err != nil {
		return err
	}
	c, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Comment not found")
	}

	allowed := c.UserID == requesterID
	if !allowed {
		post, err := s.posts.GetPostByID(ctx, c.PostID)
		switch {
		case err == nil:
			allowed = post.AuthorID == requesterID
		case !errors.Is(err, repositories.ErrNotFound):
			return internal(err)
		}
	}
	if !allowed {
		return apperror.Unauthorized("you are not authorized to delete this comment")
	}

	ids, err := s.subtree(ctx, id)
	if err != nil {
		return internal(err)
	}
	if _, err := s.comments.DeleteComments(ctx, ids); err != nil {
		return internal(err)
	}
	return nil
}

// subtree collects root and every descendant level by level. The seen set
// keeps a corrupted parent cycle from looping.
func (s *CommentService) subtree(ctx context.Context, root primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]struct{}{root: {}}
	all := []primitive.ObjectID{root}
	frontier := []primitive.ObjectID{root}
	for len(frontier) > 0 {
		children, err := s.comments.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = nil
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
			frontier = append(frontier, id)
		}
	}
	return all, nil
}

type CommentPage struct {
	Comments   []models.CommentView `json:"comments"`
	Pagination models.Pagination    `json:"pagination"`
}

// CommentsByPost returns root comments newest first, each with its direct
// replies oldest first.
func (s *CommentService) CommentsByPost(ctx context.Context, rawPostID string, requesterID uint, p models.PageRequest) (*CommentPage, error) {
	postID, err := parseID(rawPostID, "post")
	if err != nil {
		return nil, err
	}
	if _, err := visiblePost(ctx, s.posts, postID, requesterID); err != nil {
		return nil, err
	}
	p = p.Normalize()

	var (
		roots []models.Comment
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roots, err = s.comments.ListRootComments(gctx, postID, p.Skip(), int64(p.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.comments.CountRootComments(gctx, postID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}

	rootIDs := make([]primitive.ObjectID, 0, len(roots))
	authorIDs := make([]uint, 0, len(roots))
	for _, c := range roots {
		rootIDs = append(rootIDs, c.ID)
		authorIDs = append(authorIDs, c.UserID)
	}
	replies, err := s.comments.ListReplies(ctx, rootIDs)
	if err != nil {
		return nil, internal(err)
	}
	for _, r := range replies {
		authorIDs = append(authorIDs, r.UserID)
	}
	profiles, err := s.users.Profiles(ctx, authorIDs)
	if err != nil {
		return nil, internal(err)
	}

	byParent := make(map[primitive.ObjectID][]models.CommentView, len(roots))
	for _, r := range replies {
		if r.ParentCommentID == nil {
			continue
		}
		byParent[*r.ParentCommentID] = append(byParent[*r.ParentCommentID], models.CommentView{
			Comment: r,
			Author:  profilePtr(profiles, r.UserID),
			IsOwner: isOwner(r.UserID, requesterID),
		})
	}

	views := make([]models.CommentView, 0, len(roots))
	for _, c := range roots {
		views = append(views, models.CommentView{
			Comment: c,
			Author:  profilePtr(profiles, c.UserID),
			IsOwner: isOwner(c.UserID, requesterID),
			Replies: byParent[c.ID],
		})
	}
	return &CommentPage{Comments: views, Pagination: models.NewPagination(p, total)}, nil
}

func (s *CommentService) profile(ctx context.Context, id uint) *models.UserCompact {
	p, err := s.users.Profile(ctx, id)
	if err != nil {
		return nil
	}
	return p
}

// isOwner is false for anonymous requesters (id 0).
func isOwner(authorID, requesterID uint) bool {
	return requesterID != 0 && authorID == requesterID
}
