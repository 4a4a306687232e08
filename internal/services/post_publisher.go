package services

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"go.uber.org/zap"
)

// PostPublisher periodically publishes scheduled posts whose date has passed.
type PostPublisher struct {
	posts    repositories.PostRepository
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewPostPublisher(posts repositories.PostRepository, interval time.Duration) *PostPublisher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PostPublisher{
		posts:    posts,
		interval: interval,
		timeout:  10 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
	}
}

// Start runs the publish loop until Stop.
func (p *PostPublisher) Start() {
	p.wg.Add(1)
	go p.loop()
}

func (p *PostPublisher) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			p.processOnce(ctx)
			cancel()
		}
	}
}

// processOnce publishes everything due and reports how many posts went live.
func (p *PostPublisher) processOnce(ctx context.Context) int64 {
	n, err := p.posts.PublishDue(ctx, p.now())
	if err != nil {
		logger.Warn("publish scheduled posts", zap.Error(err))
		return 0
	}
	if n > 0 {
		logger.Info("scheduled posts published", zap.Int64("count", n))
	}
	return n
}

// Stop ends the loop and waits for a running pass to finish. It is safe to
// call more than once.
func (p *PostPublisher) Stop() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}
