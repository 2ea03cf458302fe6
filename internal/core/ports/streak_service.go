package ports

import (
	"context"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// StreakResult is returned by StreakService.RecordLogin.
type StreakResult struct {
	State   *domain.StreakState
	Outcome domain.StreakOutcome
	Notice  *domain.Notice // milestone notice fired by this login, if any
}

// StreakStatus is the read-side view of a user's streak.
type StreakStatus struct {
	State        *domain.StreakState
	Week         []domain.StreakRecord
	Stats        domain.StreakStats
	VisitedToday bool
	Reminder     *domain.Notice
}

// StreakService owns the streak slot of every user.
type StreakService interface {
	RecordLogin(ctx context.Context, username string) (*StreakResult, error)
	Status(ctx context.Context, username string) (*StreakStatus, error)
	Notices(ctx context.Context, username string, limit int64) ([]domain.Notice, error)
}

// ActivitySink accepts activity pings from the transport layer.
type ActivitySink interface {
	Ping(ctx context.Context, username string) (forwarded bool, err error)
}
