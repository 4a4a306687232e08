package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.PostRepository         = (*fakePosts)(nil)
	_ repositories.CommentRepository      = (*fakeComments)(nil)
	_ repositories.LikeRepository         = (*fakeLikes)(nil)
	_ repositories.FollowRepository       = (*fakeFollows)(nil)
	_ repositories.BookmarkRepository     = (*fakeBookmarks)(nil)
	_ repositories.NotificationRepository = (*fakeNotifications)(nil)
	_ UserDirectory                       = (*fakeDirectory)(nil)
)

var errTransient = errors.New("transient write failure")

// clock hands out strictly increasing timestamps so ordering assertions are
// deterministic.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)} }

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func pageOf[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}

type fakePosts struct {
	mu    sync.Mutex
	clock *clock
	posts map[primitive.ObjectID]*models.Post
}

func newFakePosts(c *clock) *fakePosts {
	return &fakePosts{clock: c, posts: map[primitive.ObjectID]*models.Post{}}
}

func (f *fakePosts) add(author uint, title string) *models.Post {
	p := &models.Post{AuthorID: author, Title: title, Status: models.PostStatusPublished}
	_ = f.CreatePost(context.Background(), p)
	return p
}

func (f *fakePosts) addDraft(author uint, title string) *models.Post {
	p := &models.Post{AuthorID: author, Title: title, Status: models.PostStatusDraft}
	_ = f.CreatePost(context.Background(), p)
	return p
}

func (f *fakePosts) likes(id primitive.ObjectID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[id].LikesCount
}

func (f *fakePosts) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = f.clock.next()
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePosts) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := f.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) list(keep func(*models.Post) bool, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Post
	for _, p := range f.posts {
		if keep(p) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pageOf(all, skip, limit), int64(len(all)), nil
}

func (f *fakePosts) ListPublished(_ context.Context, skip, limit int64) ([]models.Post, int64, error) {
	return f.list(func(p *models.Post) bool { return p.Status == models.PostStatusPublished }, skip, limit)
}

func (f *fakePosts) ListByAuthor(_ context.Context, authorID uint, includeDrafts bool, skip, limit int64) ([]models.Post, int64, error) {
	return f.list(func(p *models.Post) bool {
		return p.AuthorID == authorID && (includeDrafts || p.Status == models.PostStatusPublished)
	}, skip, limit)
}

func (f *fakePosts) UpdatePost(_ context.Context, id primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Content != "" {
		p.Content = req.Content
	}
	if req.Status != "" {
		p.Status = req.Status
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) SetPublication(_ context.Context, id primitive.ObjectID, status models.PostStatus, at time.Time) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Status = status
	p.PublishedAt = &at
	cp := *p
	return &cp, nil
}

func (f *fakePosts) PublishDue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.posts {
		if p.Status == models.PostStatusScheduled && p.PublishedAt != nil && !p.PublishedAt.After(now) {
			p.Status = models.PostStatusPublished
			n++
		}
	}
	return n, nil
}

func (f *fakePosts) DeletePost(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) inc(id primitive.ObjectID, likes, views int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		p.LikesCount += likes
		p.ViewsCount += views
	}
	return nil
}

func (f *fakePosts) IncrementLikesCount(_ context.Context, id primitive.ObjectID) error {
	return f.inc(id, 1, 0)
}

func (f *fakePosts) DecrementLikesCount(_ context.Context, id primitive.ObjectID) error {
	return f.inc(id, -1, 0)
}

func (f *fakePosts) IncrementViewsCount(_ context.Context, id primitive.ObjectID) error {
	return f.inc(id, 0, 1)
}

type fakeComments struct {
	mu       sync.Mutex
	clock    *clock
	comments map[primitive.ObjectID]*models.Comment
}

func newFakeComments(c *clock) *fakeComments {
	return &fakeComments{clock: c, comments: map[primitive.ObjectID]*models.Comment{}}
}

func (f *fakeComments) CreateComment(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = f.clock.next()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f *fakeComments) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) GetCommentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, id := range ids {
		if c, ok := f.comments[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComments) roots(postID primitive.ObjectID) []models.Comment {
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID && c.ParentCommentID == nil {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeComments) ListRootComments(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.roots(postID), skip, limit), nil
}

func (f *fakeComments) CountRootComments(_ context.Context, postID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.roots(postID))), nil
}

func (f *fakeComments) children(parentIDs []primitive.ObjectID) []models.Comment {
	want := map[primitive.ObjectID]bool{}
	for _, id := range parentIDs {
		want[id] = true
	}
	var out []models.Comment
	for _, c := range f.comments {
		if c.ParentCommentID != nil && want[*c.ParentCommentID] {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeComments) ListReplies(_ context.Context, parentIDs []primitive.ObjectID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.children(parentIDs), nil
}

func (f *fakeComments) ChildIDs(_ context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for _, c := range f.children(parentIDs) {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	now := f.clock.next()
	c.Content = content
	c.IsEdited = true
	c.EditedAt = &now
	cp := *c
	return &cp, nil
}

func (f *fakeComments) DeleteComments(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := f.comments[id]; ok {
			delete(f.comments, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeComments) adjust(id primitive.ObjectID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.comments[id]; ok {
		c.LikesCount += delta
	}
	return nil
}

func (f *fakeComments) IncrementLikesCount(_ context.Context, id primitive.ObjectID) error {
	return f.adjust(id, 1)
}

func (f *fakeComments) DecrementLikesCount(_ context.Context, id primitive.ObjectID) error {
	return f.adjust(id, -1)
}

type likeKey struct {
	user   uint
	kind   models.TargetType
	target primitive.ObjectID
}

// fakeLikes enforces the unique (user, kind, target) key like the real index.
// raceInsert makes the next CreateLike behave as if a concurrent request won
// the insert; raceDelete makes the next DeleteLike find the row already gone.
type fakeLikes struct {
	mu         sync.Mutex
	clock      *clock
	rows       map[likeKey]models.Like
	raceInsert bool
	raceDelete bool
}

func newFakeLikes(c *clock) *fakeLikes { return &fakeLikes{clock: c, rows: map[likeKey]models.Like{}} }

func (f *fakeLikes) count(kind models.TargetType, target primitive.ObjectID) int64 {
	n, _ := f.CountLikes(context.Background(), kind, target)
	return n
}

func (f *fakeLikes) FindLike(_ context.Context, userID uint, kind models.TargetType, target primitive.ObjectID) (*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[likeKey{userID, kind, target}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &l, nil
}

func (f *fakeLikes) CreateLike(_ context.Context, like *models.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey{like.UserID, like.TargetType, like.TargetID}
	if f.raceInsert {
		f.raceInsert = false
		f.rows[key] = models.Like{ID: primitive.NewObjectID(), UserID: like.UserID, TargetType: like.TargetType, TargetID: like.TargetID, CreatedAt: f.clock.next()}
		return repositories.ErrDuplicate
	}
	if _, ok := f.rows[key]; ok {
		return repositories.ErrDuplicate
	}
	like.ID = primitive.NewObjectID()
	like.CreatedAt = f.clock.next()
	f.rows[key] = *like
	return nil
}

func (f *fakeLikes) DeleteLike(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, l := range f.rows {
		if l.ID != id {
			continue
		}
		delete(f.rows, k)
		if f.raceDelete {
			f.raceDelete = false
			return false, nil
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeLikes) CountLikes(_ context.Context, kind models.TargetType, target primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.rows {
		if k.kind == kind && k.target == target {
			n++
		}
	}
	return n, nil
}

func (f *fakeLikes) byUser(userID uint, kind models.TargetType) []models.Like {
	var out []models.Like
	for _, l := range f.rows {
		if l.UserID == userID && (kind == "" || l.TargetType == kind) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeLikes) ListByUser(_ context.Context, userID uint, kind models.TargetType, skip, limit int64) ([]models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.byUser(userID, kind), skip, limit), nil
}

func (f *fakeLikes) CountByUser(_ context.Context, userID uint, kind models.TargetType) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byUser(userID, kind))), nil
}

type followKey struct{ follower, following uint }

type fakeFollows struct {
	mu         sync.Mutex
	clock      *clock
	rows       map[followKey]models.Follow
	raceInsert bool
}

func newFakeFollows(c *clock) *fakeFollows {
	return &fakeFollows{clock: c, rows: map[followKey]models.Follow{}}
}

func (f *fakeFollows) CreateFollow(_ context.Context, follow *models.Follow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := followKey{follow.FollowerID, follow.FollowingID}
	if _, ok := f.rows[key]; ok || f.raceInsert {
		f.raceInsert = false
		return repositories.ErrDuplicate
	}
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = f.clock.next()
	f.rows[key] = *follow
	return nil
}

func (f *fakeFollows) DeleteFollow(_ context.Context, followerID, followingID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := followKey{followerID, followingID}
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	return true, nil
}

func (f *fakeFollows) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[followKey{followerID, followingID}]
	return ok, nil
}

func (f *fakeFollows) filter(keep func(models.Follow) bool) []models.Follow {
	var out []models.Follow
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeFollows) ListFollowers(_ context.Context, userID uint, skip, limit int64) ([]models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.filter(func(r models.Follow) bool { return r.FollowingID == userID }), skip, limit), nil
}

func (f *fakeFollows) ListFollowing(_ context.Context, userID uint, skip, limit int64) ([]models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.filter(func(r models.Follow) bool { return r.FollowerID == userID }), skip, limit), nil
}

func (f *fakeFollows) CountFollowers(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.filter(func(r models.Follow) bool { return r.FollowingID == userID }))), nil
}

func (f *fakeFollows) CountFollowing(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.filter(func(r models.Follow) bool { return r.FollowerID == userID }))), nil
}

type bookmarkKey struct {
	user uint
	post primitive.ObjectID
}

type fakeBookmarks struct {
	mu         sync.Mutex
	clock      *clock
	rows       map[bookmarkKey]models.Bookmark
	raceInsert bool
}

func newFakeBookmarks(c *clock) *fakeBookmarks {
	return &fakeBookmarks{clock: c, rows: map[bookmarkKey]models.Bookmark{}}
}

func (f *fakeBookmarks) CreateBookmark(_ context.Context, b *models.Bookmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := bookmarkKey{b.UserID, b.PostID}
	if _, ok := f.rows[key]; ok || f.raceInsert {
		f.raceInsert = false
		return repositories.ErrDuplicate
	}
	b.ID = primitive.NewObjectID()
	b.CreatedAt = f.clock.next()
	f.rows[key] = *b
	return nil
}

func (f *fakeBookmarks) DeleteBookmark(_ context.Context, userID uint, postID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := bookmarkKey{userID, postID}
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	return true, nil
}

func (f *fakeBookmarks) IsBookmarked(_ context.Context, userID uint, postID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[bookmarkKey{userID, postID}]
	return ok, nil
}

func (f *fakeBookmarks) byUser(userID uint) []models.Bookmark {
	var out []models.Bookmark
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeBookmarks) ListByUser(_ context.Context, userID uint, skip, limit int64) ([]models.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.byUser(userID), skip, limit), nil
}

func (f *fakeBookmarks) CountByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byUser(userID))), nil
}

// fakeNotifications stores notifications and can fail the first failN
// writes to exercise retries.
type fakeNotifications struct {
	mu     sync.Mutex
	clock  *clock
	rows   []models.Notification
	failN  int
	writes int
}

func newFakeNotifications(c *clock) *fakeNotifications { return &fakeNotifications{clock: c} }

func (f *fakeNotifications) all() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.rows...)
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failN > 0 {
		f.failN--
		return errTransient
	}
	for _, r := range f.rows {
		if r.ID == n.ID {
			return repositories.ErrDuplicate
		}
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = f.clock.next()
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotifications) matching(userID uint, unreadOnly bool) []models.Notification {
	var out []models.Notification
	for _, r := range f.rows {
		if r.UserID == userID && (!unreadOnly || !r.Read) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeNotifications) List(_ context.Context, userID uint, unreadOnly bool, skip, limit int64) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.matching(userID, unreadOnly), skip, limit), nil
}

func (f *fakeNotifications) Count(_ context.Context, userID uint, unreadOnly bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(userID, unreadOnly))), nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, id primitive.ObjectID, userID uint) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows[i].Read = true
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeNotifications) MarkAllAsRead(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		if f.rows[i].UserID == userID && !f.rows[i].Read {
			f.rows[i].Read = true
			n++
		}
	}
	return n, nil
}

type fakeDirectory struct {
	users map[uint]models.UserCompact
}

func newFakeDirectory(ids ...uint) *fakeDirectory {
	d := &fakeDirectory{users: map[uint]models.UserCompact{}}
	for _, id := range ids {
		d.users[id] = models.UserCompact{ID: id, Name: userName(id), Email: userName(id) + "@example.com"}
	}
	return d
}

func userName(id uint) string { return string(rune('a'+int(id)-1)) + "-user" }

func (d *fakeDirectory) Profile(_ context.Context, id uint) (*models.UserCompact, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (d *fakeDirectory) Profiles(_ context.Context, ids []uint) (map[uint]models.UserCompact, error) {
	out := map[uint]models.UserCompact{}
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// recordingNotifier captures events synchronously and applies the same
// self-notification rule as the dispatcher.
type recordingNotifier struct {
	mu     sync.Mutex
	events []NotificationEvent
}

func (r *recordingNotifier) Emit(ev NotificationEvent) bool {
	if ev.RecipientID == ev.ActorID {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

func (r *recordingNotifier) all() []NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]NotificationEvent(nil), r.events...)
}
