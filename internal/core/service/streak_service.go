package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const (
	defaultNoticeLimit = 20
	maxNoticeLimit     = 100
)

// StreakService implements ports.StreakService. Calls for the same user are
// serialized in-process, and the repository update is atomic across replicas.
type StreakService struct {
	repo     ports.StreakRepository
	locks    *userLocks
	inbox    ports.NoticeRepository
	notifier *Notifier
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
}

// NewStreakService wires the streak slot repository, the notice inbox and the
// notifier. Calendar days are computed in loc (UTC when nil).
func NewStreakService(repo ports.StreakRepository, inbox ports.NoticeRepository, notifier *Notifier, loc *time.Location, log zerolog.Logger) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakService{
		repo:     repo,
		locks:    newUserLocks(),
		inbox:    inbox,
		notifier: notifier,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

// RecordLogin applies one activity ping to the user's streak and fires the
// milestone notice it earns, if any. The notice is delivered only after the
// state has been saved.
func (s *StreakService) RecordLogin(ctx context.Context, username string) (*ports.StreakResult, error) {
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}

	unlock := s.locks.lock(username)
	defer unlock()

	now := s.clock()
	var (
		outcome domain.StreakOutcome
		notice  *domain.Notice
	)
	state, err := s.repo.Update(ctx, username, func(st *domain.StreakState) (bool, error) {
		st.Normalize()
		outcome = st.RecordLogin(now)
		notice = nil
		if m, ok := st.ClaimMilestone(); ok {
			n := s.notifier.Milestone(username, m, now)
			notice = &n
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	metrics.StreakLoginsTotal.WithLabelValues(string(outcome)).Inc()

	s.log.Debug().
		Str("username", username).
		Str("outcome", string(outcome)).
		Int("streak", state.Streak).
		Msg("streak login recorded")

	if notice != nil {
		s.notifier.Send(ctx, *notice)
	}

	return &ports.StreakResult{State: state, Outcome: outcome, Notice: notice}, nil
}

// Status returns the streak view of the user and fires the risk reminder when
// one is due today.
func (s *StreakService) Status(ctx context.Context, username string) (*ports.StreakStatus, error) {
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}

	unlock := s.locks.lock(username)
	defer unlock()

	now := s.clock()
	claimed := false
	state, err := s.repo.Update(ctx, username, func(st *domain.StreakState) (bool, error) {
		st.Normalize()
		claimed = st.ClaimReminder(now)
		return claimed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("streak status: %w", err)
	}

	status := &ports.StreakStatus{
		State:        state,
		Week:         state.WeekStreak(now),
		Stats:        state.Stats(now),
		VisitedToday: state.HasVisited(domain.DayKey(now)),
	}
	if claimed {
		n := s.notifier.Reminder(username, state.Streak, now)
		status.Reminder = &n
		s.notifier.Send(ctx, n)
	}

	return status, nil
}

// Notices lists the most recent notices delivered to the user.
func (s *StreakService) Notices(ctx context.Context, username string, limit int64) ([]domain.Notice, error) {
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}
	if s.inbox == nil {
		return []domain.Notice{}, nil
	}
	if limit <= 0 {
		limit = defaultNoticeLimit
	}
	if limit > maxNoticeLimit {
		limit = maxNoticeLimit
	}

	notices, err := s.inbox.ListByUser(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

func (s *StreakService) clock() time.Time {
	return s.now().In(s.loc)
}
