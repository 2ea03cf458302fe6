package ports

import (
	"context"
	"time"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// StreakMutation changes a loaded streak slot and reports whether it must be
// written back. It may run more than once when a concurrent write wins.
type StreakMutation func(state *domain.StreakState) (changed bool, err error)

// StreakRepository persists one streak slot per user. Update loads the slot
// (a fresh empty state when it does not exist yet), applies fn and stores the
// result atomically with respect to other writers of the same slot.
type StreakRepository interface {
	Update(ctx context.Context, username string, fn StreakMutation) (*domain.StreakState, error)
}

// NoticeSink delivers user-visible notices. Delivery is fire-and-forget.
type NoticeSink interface {
	Deliver(ctx context.Context, notice domain.Notice) error
}

// NoticeRepository is the per-user inbox of delivered notices.
type NoticeRepository interface {
	Insert(ctx context.Context, notice *domain.Notice) error
	ListByUser(ctx context.Context, username string, limit int64) ([]domain.Notice, error)
}

// ActivityStore records the last activity time of every user.
type ActivityStore interface {
	Touch(ctx context.Context, username string, at time.Time) error
	ActiveSince(ctx context.Context, since time.Time) ([]string, error)
	Prune(ctx context.Context, before time.Time) error
}
