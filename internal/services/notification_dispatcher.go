package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const unknownActor = "Someone"

// NotificationEvent is a request to notify RecipientID about something
// ActorID did.
type NotificationEvent struct {
	Type        models.NotificationType
	RecipientID uint
	ActorID     uint
	PostID      *primitive.ObjectID
	CommentID   *primitive.ObjectID
	// TargetKind and Subject shape the message: the liked kind, and the post
	// title for comment and post-like notifications.
	TargetKind models.TargetType
	Subject    string
}

// NotificationWriter persists notifications.
type NotificationWriter interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type DispatcherConfig struct {
	Workers   int
	QueueSize int
	MaxTries  uint
	// Timeout bounds one event including its retries.
	Timeout time.Duration
	// InitialInterval is the first retry delay. Zero uses the backoff default.
	InitialInterval time.Duration
}

// Dispatcher fans notification events out to a pool of workers. Emit never
// blocks: a full queue drops the event.
type Dispatcher struct {
	store NotificationWriter
	users UserDirectory
	cfg   DispatcherConfig

	ch chan NotificationEvent
	wg sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewDispatcher(store NotificationWriter, users UserDirectory, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Dispatcher{
		store: store,
		users: users,
		cfg:   cfg,
		ch:    make(chan NotificationEvent, cfg.QueueSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Emit enqueues ev and reports whether it was accepted. Self-notifications
// are discarded.
func (d *Dispatcher) Emit(ev NotificationEvent) bool {
	if ev.RecipientID == 0 || ev.RecipientID == ev.ActorID {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logger.Warn("notification dispatcher closed, drop event",
			zap.String("type", string(ev.Type)), zap.Uint("recipient", ev.RecipientID))
		return false
	}

	select {
	case d.ch <- ev:
		return true
	default:
		logger.Warn("notification queue full, drop event",
			zap.String("type", string(ev.Type)),
			zap.Uint("recipient", ev.RecipientID),
			zap.Uint("actor", ev.ActorID))
		return false
	}
}

// Close stops intake and waits for queued events to be written or for ctx
// to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.ch)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Warn("notification dispatcher close timed out", zap.Int("pending", len(d.ch)))
		return ctx.Err()
	}
}

// QueueLen is a sampled queue length.
func (d *Dispatcher) QueueLen() int { return len(d.ch) }

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for ev := range d.ch {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	n := &models.Notification{
		ID:               primitive.NewObjectID(),
		UserID:           ev.RecipientID,
		Type:             ev.Type,
		RelatedUserID:    ev.ActorID,
		RelatedPostID:    ev.PostID,
		RelatedCommentID: ev.CommentID,
		Message:          buildMessage(ev, d.actorName(ctx, ev.ActorID)),
	}

	// The id is fixed before the first attempt, so a retry after a lost
	// acknowledgement hits the primary key instead of writing twice.
	op := func() (struct{}, error) {
		err := d.store.CreateNotification(ctx, n)
		if errors.Is(err, repositories.ErrDuplicate) {
			return struct{}{}, nil
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(d.newBackOff()),
		backoff.WithMaxTries(d.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("retrying notification write", zap.Error(err), zap.Duration("next", next))
		}),
	)
	if err != nil {
		logger.Error("notification write failed",
			zap.String("type", string(ev.Type)),
			zap.Uint("recipient", ev.RecipientID),
			zap.Uint("actor", ev.ActorID),
			zap.Error(err))
	}
}

func (d *Dispatcher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if d.cfg.InitialInterval > 0 {
		b.InitialInterval = d.cfg.InitialInterval
		b.MaxInterval = 10 * d.cfg.InitialInterval
	}
	return b
}

func (d *Dispatcher) actorName(ctx context.Context, id uint) string {
	if d.users == nil {
		return unknownActor
	}
	p, err := d.users.Profile(ctx, id)
	if err != nil || p == nil || p.Name == "" {
		return unknownActor
	}
	return p.Name
}

func buildMessage(ev NotificationEvent, actor string) string {
	switch ev.Type {
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your post %q", actor, ev.Subject)
	case models.NotificationReply:
		return fmt.Sprintf("%s replied to your comment", actor)
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", actor)
	case models.NotificationLike:
		if ev.TargetKind == models.TargetPost {
			return fmt.Sprintf("%s liked your post %q", actor, ev.Subject)
		}
		return fmt.Sprintf("%s liked your comment", actor)
	default:
		return fmt.Sprintf("%s interacted with your content", actor)
	}
}
