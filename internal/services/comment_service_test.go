package services

import (
	"context"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/apperror"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentFixture struct {
	ctx      context.Context
	posts    *fakePosts
	comments *fakeComments
	notifier *recordingNotifier
	svc      *CommentService
}

func newCommentFixture() *commentFixture {
	c := newClock()
	f := &commentFixture{
		ctx:      context.Background(),
		posts:    newFakePosts(c),
		comments: newFakeComments(c),
		notifier: &recordingNotifier{},
	}
	f.svc = NewCommentService(f.posts, f.comments, newFakeDirectory(1, 2, 3, 4), f.notifier, 3)
	return f
}

func (f *commentFixture) comment(t *testing.T, user uint, post *models.Post, parent *models.CommentView, content string) *models.CommentView {
	t.Helper()
	req := models.CreateCommentRequest{PostID: post.ID.Hex(), Content: content}
	if parent != nil {
		req.ParentCommentID = parent.ID.Hex()
	}
	cv, err := f.svc.CreateComment(f.ctx, user, req)
	require.NoError(t, err)
	return cv
}

// B (2) replies to a comment by C (3) on a post by D (4).
func TestCreateComment_ReplyScenario(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "D's post")
	parent := f.comment(t, 3, post, nil, "first")

	f.notifier.events = nil
	reply := f.comment(t, 2, post, parent, "reply")
	assert.Equal(t, parent.ID, *reply.ParentCommentID)
	assert.True(t, reply.IsOwner)

	events := f.notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, models.NotificationComment, events[0].Type)
	assert.EqualValues(t, 4, events[0].RecipientID)
	assert.Equal(t, "D's post", events[0].Subject)
	assert.Equal(t, models.NotificationReply, events[1].Type)
	assert.EqualValues(t, 3, events[1].RecipientID)
	for _, ev := range events {
		assert.EqualValues(t, 2, ev.ActorID)
		assert.Equal(t, reply.ID, *ev.CommentID)
	}
}

func TestCreateComment_OwnPostOwnCommentNoNotifications(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(1, "mine")
	root := f.comment(t, 1, post, nil, "note to self")
	f.comment(t, 1, post, root, "and again")

	assert.Empty(t, f.notifier.all())
}

func TestCreateComment_DepthLimit(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "deep")

	level1 := f.comment(t, 1, post, nil, "1")
	level2 := f.comment(t, 2, post, level1, "2")
	level3 := f.comment(t, 3, post, level2, "3")

	_, err := f.svc.CreateComment(f.ctx, 1, models.CreateCommentRequest{
		PostID:          post.ID.Hex(),
		Content:         "4",
		ParentCommentID: level3.ID.Hex(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "maximum nesting depth exceeded")
}

func TestCreateComment_Errors(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "a")
	other := f.posts.add(4, "b")
	onOther := f.comment(t, 1, other, nil, "elsewhere")

	_, err := f.svc.CreateComment(f.ctx, 1, models.CreateCommentRequest{PostID: primitive.NewObjectID().Hex(), Content: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateComment(f.ctx, 1, models.CreateCommentRequest{PostID: post.ID.Hex(), Content: "x", ParentCommentID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateComment(f.ctx, 1, models.CreateCommentRequest{PostID: post.ID.Hex(), Content: "x", ParentCommentID: onOther.ID.Hex()})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateComment(f.ctx, 1, models.CreateCommentRequest{PostID: "nope", Content: "x"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteComment_CascadesToReplies(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "p")
	root := f.comment(t, 1, post, nil, "root")
	f.comment(t, 2, post, root, "reply one")
	r2 := f.comment(t, 3, post, root, "reply two")
	f.comment(t, 2, post, r2, "nested")
	survivor := f.comment(t, 2, post, nil, "other root")

	require.NoError(t, f.svc.DeleteComment(f.ctx, root.ID.Hex(), 1))

	page, err := f.svc.CommentsByPost(f.ctx, post.ID.Hex(), 0, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, survivor.ID, page.Comments[0].ID)
	assert.Empty(t, page.Comments[0].Replies)
	assert.Len(t, f.comments.comments, 1)
}

func TestDeleteComment_Authorization(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "p")
	c := f.comment(t, 1, post, nil, "root")

	err := f.svc.DeleteComment(f.ctx, c.ID.Hex(), 2)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	// the post author may moderate
	require.NoError(t, f.svc.DeleteComment(f.ctx, c.ID.Hex(), 4))

	err = f.svc.DeleteComment(f.ctx, c.ID.Hex(), 4)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCommentsByPost_Ordering(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "p")
	older := f.comment(t, 1, post, nil, "older root")
	newer := f.comment(t, 2, post, nil, "newer root")
	first := f.comment(t, 3, post, older, "first reply")
	second := f.comment(t, 2, post, older, "second reply")

	page, err := f.svc.CommentsByPost(f.ctx, post.ID.Hex(), 2, models.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Comments, 2)
	assert.EqualValues(t, 2, page.Pagination.Total)

	assert.Equal(t, newer.ID, page.Comments[0].ID)
	assert.True(t, page.Comments[0].IsOwner)
	assert.Equal(t, older.ID, page.Comments[1].ID)
	assert.False(t, page.Comments[1].IsOwner)

	replies := page.Comments[1].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, first.ID, replies[0].ID)
	assert.Equal(t, second.ID, replies[1].ID)
	assert.True(t, replies[1].IsOwner)
	require.NotNil(t, replies[0].Author)
	assert.EqualValues(t, 3, replies[0].Author.ID)

	page, err = f.svc.CommentsByPost(f.ctx, post.ID.Hex(), 0, models.PageRequest{Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, older.ID, page.Comments[0].ID)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestUpdateComment(t *testing.T) {
	f := newCommentFixture()
	post := f.posts.add(4, "p")
	c := f.comment(t, 1, post, nil, "typo")

	_, err := f.svc.UpdateComment(f.ctx, c.ID.Hex(), 2, models.UpdateCommentRequest{Content: "hijack"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	updated, err := f.svc.UpdateComment(f.ctx, c.ID.Hex(), 1, models.UpdateCommentRequest{Content: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)
	assert.True(t, updated.IsEdited)
	assert.NotNil(t, updated.EditedAt)

	got, err := f.svc.GetComment(f.ctx, c.ID.Hex(), 3)
	require.NoError(t, err)
	assert.False(t, got.IsOwner)
	assert.Equal(t, "fixed", got.Content)
}
