package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const (
	defaultActivityWindow = 5 * time.Minute
	limiterIdleTTL        = 30 * time.Minute
)

type userLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// ActivitySink forwards at most one activity ping per interval and user to
// the activity store. Pings inside the interval are dropped.
type ActivitySink struct {
	store ports.ActivityStore
	limit rate.Limit
	log   zerolog.Logger
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*userLimiter
}

// NewActivitySink builds a sink. A non-positive interval forwards every ping.
func NewActivitySink(store ports.ActivityStore, interval time.Duration, log zerolog.Logger) *ActivitySink {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ActivitySink{
		store:    store,
		limit:    limit,
		log:      log,
		now:      time.Now,
		limiters: make(map[string]*userLimiter),
	}
}

// Ping registers activity of username. It reports whether the ping reached
// the store.
func (s *ActivitySink) Ping(ctx context.Context, username string) (bool, error) {
	now := s.now()
	if !s.allow(username, now) {
		metrics.ActivityPingsTotal.WithLabelValues("dropped").Inc()
		return false, nil
	}

	if err := s.store.Touch(ctx, username, now); err != nil {
		return false, fmt.Errorf("touch activity: %w", err)
	}
	metrics.ActivityPingsTotal.WithLabelValues("forwarded").Inc()
	return true, nil
}

func (s *ActivitySink) allow(username string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, l := range s.limiters {
		if now.After(l.expires) {
			delete(s.limiters, key)
		}
	}

	l, ok := s.limiters[username]
	if !ok {
		l = &userLimiter{limiter: rate.NewLimiter(s.limit, 1)}
		s.limiters[username] = l
	}
	l.expires = now.Add(limiterIdleTTL)
	return l.limiter.AllowN(now, 1)
}

// LivenessChecker periodically re-records the streak of every user active
// within the window, so a session left open across midnight still counts.
type LivenessChecker struct {
	store    ports.ActivityStore
	streaks  ports.StreakService
	window   time.Duration
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewLivenessChecker(store ports.ActivityStore, streaks ports.StreakService, window, interval time.Duration, log zerolog.Logger) *LivenessChecker {
	if window <= 0 {
		window = defaultActivityWindow
	}
	if interval <= 0 {
		interval = defaultActivityWindow
	}
	return &LivenessChecker{
		store:    store,
		streaks:  streaks,
		window:   window,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run checks on every tick until ctx is cancelled.
func (c *LivenessChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.CheckOnce(ctx); err != nil {
				c.log.Error().Err(err).Msg("liveness check failed")
			}
		}
	}
}

// CheckOnce records a streak login for every recently active user and
// forgets users idle for longer than the window. It returns the number of
// logins recorded.
func (c *LivenessChecker) CheckOnce(ctx context.Context) (int, error) {
	cutoff := c.now().Add(-c.window)

	users, err := c.store.ActiveSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list active users: %w", err)
	}

	recorded := 0
	for _, username := range users {
		if _, err := c.streaks.RecordLogin(ctx, username); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("liveness record failed")
			continue
		}
		recorded++
		metrics.LivenessRecordedTotal.Inc()
	}

	if err := c.store.Prune(ctx, cutoff); err != nil {
		c.log.Warn().Err(err).Msg("activity prune failed")
	}
	return recorded, nil
}
