package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPublisher_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	posts := newFakePosts(newClock())
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	schedule := func(at time.Time) *models.Post {
		p := &models.Post{AuthorID: 1, Title: "later", Status: models.PostStatusScheduled, PublishedAt: &at}
		require.NoError(t, posts.CreatePost(ctx, p))
		return p
	}
	due := schedule(now.Add(-time.Minute))
	exact := schedule(now)
	later := schedule(now.Add(time.Hour))
	draft := posts.addDraft(1, "draft")

	pub := NewPostPublisher(posts, time.Hour)
	pub.now = func() time.Time { return now }

	assert.EqualValues(t, 2, pub.processOnce(ctx))
	assert.EqualValues(t, 0, pub.processOnce(ctx), "second pass finds nothing due")

	status := func(p *models.Post) models.PostStatus {
		got, err := posts.GetPostByID(ctx, p.ID)
		require.NoError(t, err)
		return got.Status
	}
	assert.Equal(t, models.PostStatusPublished, status(due))
	assert.Equal(t, models.PostStatusPublished, status(exact))
	assert.Equal(t, models.PostStatusScheduled, status(later))
	assert.Equal(t, models.PostStatusDraft, status(draft))
}

func TestPostPublisher_StartStop(t *testing.T) {
	pub := NewPostPublisher(newFakePosts(newClock()), time.Millisecond)
	pub.Start()
	time.Sleep(5 * time.Millisecond)
	pub.Stop()
	pub.Stop()
}
