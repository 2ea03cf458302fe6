package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// Notifier builds streak notices and hands them to a NoticeSink.
// A nil Notifier or a Notifier without a sink discards everything it is sent.
type Notifier struct {
	sink  ports.NoticeSink
	log   zerolog.Logger
	newID func() string
}

func NewNotifier(sink ports.NoticeSink, log zerolog.Logger) *Notifier {
	return &Notifier{sink: sink, log: log, newID: uuid.NewString}
}

// Milestone builds the celebratory notice for m.
func (n *Notifier) Milestone(username string, m domain.Milestone, at time.Time) domain.Notice {
	return domain.Notice{
		ID:          n.id(),
		Username:    username,
		Kind:        domain.NoticeMilestone,
		Title:       m.Title,
		Description: m.Description,
		Streak:      m.Days,
		CreatedAt:   at.UTC(),
	}
}

// Reminder builds the streak risk reminder for a streak of the given length.
func (n *Notifier) Reminder(username string, streak int, at time.Time) domain.Notice {
	title, desc := domain.ReminderCopy(streak)
	return domain.Notice{
		ID:          n.id(),
		Username:    username,
		Kind:        domain.NoticeReminder,
		Title:       title,
		Description: desc,
		Streak:      streak,
		CreatedAt:   at.UTC(),
	}
}

// Send delivers notice. Failures are logged and never returned.
func (n *Notifier) Send(ctx context.Context, notice domain.Notice) {
	if n == nil || n.sink == nil {
		return
	}

	label := "-"
	if notice.Kind == domain.NoticeMilestone {
		label = strconv.Itoa(notice.Streak)
	}
	metrics.StreakNoticesTotal.WithLabelValues(string(notice.Kind), label).Inc()

	if err := n.sink.Deliver(ctx, notice); err != nil {
		n.log.Warn().Err(err).
			Str("username", notice.Username).
			Str("kind", string(notice.Kind)).
			Msg("notice delivery failed")
	}
}

func (n *Notifier) id() string {
	if n == nil || n.newID == nil {
		return uuid.NewString()
	}
	return n.newID()
}
