package portal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultPollInterval = 30 * time.Second

// CountPoller refreshes a badge count on a fixed interval for as long as
// the owning view is mounted. Stop cancels the timer; a fetch completing
// after Stop never invokes the callback.
type CountPoller struct {
	interval time.Duration
	fetch    func(ctx context.Context) (int, error)
	onCount  func(n int)
	logger   *zap.Logger

	cancel context.CancelFunc
}

func NewCountPoller(
	interval time.Duration,
	fetch func(ctx context.Context) (int, error),
	onCount func(n int),
	logger ...*zap.Logger,
) *CountPoller {
	l := zap.L().Named("portal.poller")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("portal.poller")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &CountPoller{
		interval: interval,
		fetch:    fetch,
		onCount:  onCount,
		logger:   l,
	}
}

// Start begins polling immediately and then on every tick. It returns at
// once; polling runs until Stop or the parent context is cancelled.
func (p *CountPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop cancels the poller; it is safe to call more than once.
func (p *CountPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *CountPoller) poll(ctx context.Context) {
	n, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("count poll failed", zap.Error(err))
		}
		return
	}
	// The view may have unmounted while the request was in flight.
	if ctx.Err() != nil {
		return
	}
	p.onCount(n)
}
