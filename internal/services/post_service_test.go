package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService(t *testing.T) {
	ctx := context.Background()
	posts := newFakePosts(newClock())
	svc := NewPostService(posts, newFakeDirectory(1, 2))

	pub, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "Hello", Content: "body", Status: models.PostStatusPublished})
	require.NoError(t, err)
	require.NotNil(t, pub.Author)
	assert.Equal(t, "a-user", pub.Author.Name)

	draft, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "WIP", Content: "body", Status: models.PostStatusDraft})
	require.NoError(t, err)

	t.Run("views counted for readers only", func(t *testing.T) {
		got, err := svc.GetPost(ctx, pub.ID.Hex(), 2)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.ViewsCount)

		_, err = svc.GetPost(ctx, pub.ID.Hex(), 1)
		require.NoError(t, err)
		stored, _ := posts.GetPostByID(ctx, pub.ID)
		assert.EqualValues(t, 1, stored.ViewsCount)
	})

	t.Run("drafts hidden from others", func(t *testing.T) {
		_, err := svc.GetPost(ctx, draft.ID.Hex(), 2)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = svc.GetPost(ctx, draft.ID.Hex(), 1)
		assert.NoError(t, err)

		page, err := svc.ListPosts(ctx, 1, 2, models.PageRequest{})
		require.NoError(t, err)
		assert.Len(t, page.Posts, 1)

		page, err = svc.ListPosts(ctx, 1, 1, models.PageRequest{})
		require.NoError(t, err)
		assert.Len(t, page.Posts, 2)

		page, err = svc.ListPosts(ctx, 0, 0, models.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, pub.ID, page.Posts[0].ID)
		require.NotNil(t, page.Posts[0].Author)
	})

	t.Run("update by author only", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, pub.ID.Hex(), 2, models.UpdatePostRequest{Title: "pwned"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)

		got, err := svc.UpdatePost(ctx, pub.ID.Hex(), 1, models.UpdatePostRequest{Title: "Hello again"})
		require.NoError(t, err)
		assert.Equal(t, "Hello again", got.Title)
	})

	t.Run("delete by author or admin", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeletePost(ctx, draft.ID.Hex(), 2, false), apperror.ErrUnauthorized)
		require.NoError(t, svc.DeletePost(ctx, draft.ID.Hex(), 2, true))
		require.NoError(t, svc.DeletePost(ctx, pub.ID.Hex(), 1, false))
		assert.ErrorIs(t, svc.DeletePost(ctx, pub.ID.Hex(), 1, false), apperror.ErrNotFound)
		assert.ErrorIs(t, svc.DeletePost(ctx, "x", 1, false), apperror.ErrValidation)
	})
}

func TestPostPublication(t *testing.T) {
	ctx := context.Background()
	posts := newFakePosts(newClock())
	svc := NewPostService(posts, newFakeDirectory(1, 2))
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	t.Run("schedule on create needs a future date", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "t", Content: "c", Status: models.PostStatusScheduled})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "t", Content: "c", Status: models.PostStatusScheduled, PublishedAt: &past})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		got, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "t", Content: "c", Status: models.PostStatusScheduled, PublishedAt: &future})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusScheduled, got.Status)
	})

	t.Run("publish", func(t *testing.T) {
		draft, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "d", Content: "c", Status: models.PostStatusDraft})
		require.NoError(t, err)

		_, err = svc.PublishPost(ctx, draft.ID.Hex(), 2)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)

		got, err := svc.PublishPost(ctx, draft.ID.Hex(), 1)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusPublished, got.Status)
		require.NotNil(t, got.PublishedAt)
		assert.WithinDuration(t, time.Now(), *got.PublishedAt, time.Minute)

		_, err = svc.PublishPost(ctx, draft.ID.Hex(), 1)
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = svc.GetPost(ctx, draft.ID.Hex(), 2)
		assert.NoError(t, err)
	})

	t.Run("schedule", func(t *testing.T) {
		draft, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Title: "s", Content: "c", Status: models.PostStatusDraft})
		require.NoError(t, err)

		_, err = svc.SchedulePost(ctx, draft.ID.Hex(), 1, past)
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = svc.SchedulePost(ctx, draft.ID.Hex(), 2, future)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)

		got, err := svc.SchedulePost(ctx, draft.ID.Hex(), 1, future)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusScheduled, got.Status)
		require.NotNil(t, got.PublishedAt)
		assert.True(t, got.PublishedAt.Equal(future))

		_, err = svc.GetPost(ctx, draft.ID.Hex(), 2)
		assert.ErrorIs(t, err, apperror.ErrNotFound, "scheduled posts stay hidden until they go live")
	})
}
