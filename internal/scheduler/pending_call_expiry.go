package scheduler

import (
	"context"
	"time"

	"crm_backend/platform/logger"
)

const (
	defaultPendingCallSweepInterval = 5 * time.Minute
	defaultPendingCallExpiry        = time.Hour
)

// PendingCallExpirer abandons pending calls whose provider event never arrived.
type PendingCallExpirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PendingCallExpiry periodically marks stale initiated pending calls abandoned.
// Without it, a dropped webhook delivery would leave rows in `initiated`
// forever and widen the matcher's candidate set over time.
type PendingCallExpiry struct {
	expirer  PendingCallExpirer
	log      *logger.Logger
	interval time.Duration
	expiry   time.Duration
}

func NewPendingCallExpiry(expirer PendingCallExpirer, log *logger.Logger, interval, expiry time.Duration) *PendingCallExpiry {
	if interval <= 0 {
		interval = defaultPendingCallSweepInterval
	}
	if expiry <= 0 {
		expiry = defaultPendingCallExpiry
	}

	return &PendingCallExpiry{
		expirer:  expirer,
		log:      log,
		interval: interval,
		expiry:   expiry,
	}
}

func (s *PendingCallExpiry) Run(ctx context.Context) {
	if s == nil || s.expirer == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PendingCallExpiry) sweep(ctx context.Context) {
	expired, err := s.expirer.ExpireStale(ctx, s.expiry)
	if err != nil {
		s.log.Warn("pending call expiry sweep failed", "error", err)
		return
	}

	if expired > 0 {
		s.log.Info("abandoned stale pending calls", "expired", expired)
	}
}
