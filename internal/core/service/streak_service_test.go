package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

func newStreakSvc(repo *memStreakRepo, sink *captureSink, clock *fakeClock) *StreakService {
	svc := NewStreakService(repo, nil, NewNotifier(sink, zerolog.Nop()), time.UTC, zerolog.Nop())
	svc.now = clock.Now
	return svc
}

func TestStreakService_RecordLogin_PersistsAcrossCalls(t *testing.T) {
	repo := newMemStreakRepo()
	clock := &fakeClock{t: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)}
	svc := newStreakSvc(repo, &captureSink{}, clock)

	res, err := svc.RecordLogin(context.Background(), "ana")
	if err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if res.Outcome != domain.StreakStarted || res.State.Streak != 1 {
		t.Fatalf("unexpected first result %s/%d", res.Outcome, res.State.Streak)
	}

	clock.Advance(24 * time.Hour)
	res, err = svc.RecordLogin(context.Background(), "ana")
	if err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if res.Outcome != domain.StreakAdvanced || res.State.Streak != 2 {
		t.Fatalf("unexpected second result %s/%d", res.Outcome, res.State.Streak)
	}

	if repo.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", repo.saves)
	}
	if got := repo.slots["ana"].Streak; got != 2 {
		t.Fatalf("persisted streak = %d, want 2", got)
	}
	if _, ok := repo.slots["ben"]; ok {
		t.Fatalf("slots must be per user")
	}
}

func TestStreakService_RecordLogin_FiresMilestoneOnce(t *testing.T) {
	repo := newMemStreakRepo()
	sink := &captureSink{}
	clock := &fakeClock{t: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
	svc := newStreakSvc(repo, sink, clock)

	for i := 0; i < 3; i++ {
		res, err := svc.RecordLogin(context.Background(), "ana")
		if err != nil {
			t.Fatalf("day %d: %v", i, err)
		}
		if i < 2 && res.Notice != nil {
			t.Fatalf("day %d: unexpected notice %+v", i, res.Notice)
		}
		if i == 2 {
			if res.Notice == nil || res.Notice.Streak != 3 || res.Notice.Kind != domain.NoticeMilestone {
				t.Fatalf("expected 3-day milestone notice, got %+v", res.Notice)
			}
		}
		clock.Advance(24 * time.Hour)
	}

	// same day as the milestone again
	clock.Advance(-20 * time.Hour)
	res, err := svc.RecordLogin(context.Background(), "ana")
	if err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if res.Notice != nil || res.Outcome != domain.StreakKept {
		t.Fatalf("repeat login re-fired: %+v (%s)", res.Notice, res.Outcome)
	}

	if len(sink.notices) != 1 {
		t.Fatalf("expected exactly one delivered notice, got %d", len(sink.notices))
	}
	if sink.notices[0].Username != "ana" || sink.notices[0].ID == "" {
		t.Fatalf("unexpected notice %+v", sink.notices[0])
	}
}

func TestStreakService_RecordLogin_SaveFailureDeliversNothing(t *testing.T) {
	repo := newMemStreakRepo()
	repo.slots["ana"] = domain.StreakState{Streak: 2, LastStreakDate: "2024-03-05T09:00:00Z"}
	repo.saveErr = errors.New("redis down")
	sink := &captureSink{}
	clock := &fakeClock{t: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)}
	svc := newStreakSvc(repo, sink, clock)

	if _, err := svc.RecordLogin(context.Background(), "ana"); err == nil {
		t.Fatalf("expected save error")
	}
	if len(sink.notices) != 0 {
		t.Fatalf("notice delivered for unsaved state")
	}
}

func TestStreakService_RecordLogin_LoadError(t *testing.T) {
	repo := newMemStreakRepo()
	repo.loadErr = errors.New("network")
	svc := newStreakSvc(repo, &captureSink{}, &fakeClock{t: time.Now()})

	_, err := svc.RecordLogin(context.Background(), "ana")
	if err == nil || !errors.Is(err, repo.loadErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}

func TestStreakService_RecordLogin_SinkFailureIsNotAnError(t *testing.T) {
	repo := newMemStreakRepo()
	repo.slots["ana"] = domain.StreakState{Streak: 2, LastStreakDate: "2024-03-05T09:00:00Z"}
	sink := &captureSink{err: errors.New("queue full")}
	svc := newStreakSvc(repo, sink, &fakeClock{t: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)})

	res, err := svc.RecordLogin(context.Background(), "ana")
	if err != nil {
		t.Fatalf("delivery failure must not fail the login: %v", err)
	}
	if res.Notice == nil {
		t.Fatalf("expected milestone in result")
	}
}

func TestStreakService_RecordLogin_NegativeStreakClamped(t *testing.T) {
	repo := newMemStreakRepo()
	repo.slots["ana"] = domain.StreakState{Streak: -3, LastStreakDate: "2024-03-06T08:00:00Z"}
	svc := newStreakSvc(repo, &captureSink{}, &fakeClock{t: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)})

	res, err := svc.RecordLogin(context.Background(), "ana")
	if err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if res.State.Streak != 0 {
		t.Fatalf("expected clamped streak kept at 0, got %d", res.State.Streak)
	}
}

func TestStreakService_RecordLogin_RequiresUser(t *testing.T) {
	svc := newStreakSvc(newMemStreakRepo(), &captureSink{}, &fakeClock{t: time.Now()})
	if _, err := svc.RecordLogin(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestStreakService_RecordLogin_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	repo := newMemStreakRepo()
	svc := NewStreakService(repo, nil, nil, loc, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, time.March, 6, 20, 0, 0, 0, time.UTC) }

	res, err := svc.RecordLogin(context.Background(), "ana")
	if err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if res.State.LoginDates[0].Date != "2024-03-07" {
		t.Fatalf("expected local day 2024-03-07, got %s", res.State.LoginDates[0].Date)
	}
}

func TestStreakService_Status_FiresReminderOncePerDay(t *testing.T) {
	repo := newMemStreakRepo()
	repo.slots["ana"] = domain.StreakState{
		Streak:         4,
		LastStreakDate: "2024-03-05T09:00:00Z",
		LoginDates:     []domain.StreakRecord{{Date: "2024-03-05", Count: 1}},
	}
	sink := &captureSink{}
	svc := newStreakSvc(repo, sink, &fakeClock{t: time.Date(2024, time.March, 6, 18, 0, 0, 0, time.UTC)})

	st, err := svc.Status(context.Background(), "ana")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Reminder == nil || st.Reminder.Kind != domain.NoticeReminder {
		t.Fatalf("expected reminder, got %+v", st.Reminder)
	}
	if st.VisitedToday {
		t.Fatalf("today is not visited")
	}
	if len(st.Week) != 7 || st.Week[0].Date != "2024-03-03" {
		t.Fatalf("unexpected week %+v", st.Week)
	}

	st, err = svc.Status(context.Background(), "ana")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Reminder != nil {
		t.Fatalf("reminder fired twice on one day")
	}
	if len(sink.notices) != 1 {
		t.Fatalf("expected one delivered reminder, got %d", len(sink.notices))
	}
}

func TestStreakService_Status_DoesNotRecord(t *testing.T) {
	repo := newMemStreakRepo()
	svc := newStreakSvc(repo, &captureSink{}, &fakeClock{t: time.Now()})

	st, err := svc.Status(context.Background(), "ana")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.State.Streak != 0 || len(st.State.LoginDates) != 0 {
		t.Fatalf("status must be read-only, got %+v", st.State)
	}
	if repo.saves != 0 {
		t.Fatalf("unexpected save")
	}
}

func TestStreakService_Notices(t *testing.T) {
	var gotLimit int64
	inbox := &stubInbox{listFn: func(_ context.Context, username string, limit int64) ([]domain.Notice, error) {
		gotLimit = limit
		return []domain.Notice{{ID: "1", Username: username}}, nil
	}}
	svc := NewStreakService(newMemStreakRepo(), inbox, nil, nil, zerolog.Nop())

	notices, err := svc.Notices(context.Background(), "ana", 0)
	if err != nil {
		t.Fatalf("Notices: %v", err)
	}
	if len(notices) != 1 || gotLimit != defaultNoticeLimit {
		t.Fatalf("unexpected notices %+v (limit %d)", notices, gotLimit)
	}

	if _, err := svc.Notices(context.Background(), "ana", 10_000); err != nil {
		t.Fatalf("Notices: %v", err)
	}
	if gotLimit != maxNoticeLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxNoticeLimit, gotLimit)
	}
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestStreakService_RecordLogin_ConcurrentCallsAllCount(t *testing.T) {
	repo := newMemStreakRepo()
	repo.delay = 2 * time.Millisecond
	clock := &fakeClock{t: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)}
	svc := newStreakSvc(repo, &captureSink{}, clock)

	const calls = 10
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordLogin(context.Background(), "ana"); err != nil {
				t.Errorf("RecordLogin: %v", err)
			}
		}()
	}
	wg.Wait()

	slot := repo.slots["ana"]
	if len(slot.LoginDates) != 1 || slot.LoginDates[0].Count != calls {
		t.Fatalf("lost updates: %+v, want count %d", slot.LoginDates, calls)
	}
	if slot.Streak != 1 {
		t.Fatalf("same-day logins must not advance the streak, got %d", slot.Streak)
	}
	if n := svc.locks.size(); n != 0 {
		t.Fatalf("expected user locks released, %d left", n)
	}
}

func TestStreakService_ConcurrentLoginAndStatus_MilestoneOnce(t *testing.T) {
	repo := newMemStreakRepo()
	repo.delay = time.Millisecond
	repo.slots["ana"] = domain.StreakState{
		Streak:         2,
		LastStreakDate: "2024-03-05T09:00:00Z",
		LoginDates:     []domain.StreakRecord{{Date: "2024-03-04", Count: 1}, {Date: "2024-03-05", Count: 1}},
	}
	sink := &captureSink{}
	svc := newStreakSvc(repo, sink, &fakeClock{t: time.Date(2024, time.March, 6, 18, 0, 0, 0, time.UTC)})

	const logins = 6
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordLogin(context.Background(), "ana"); err != nil {
				t.Errorf("RecordLogin: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.Status(context.Background(), "ana"); err != nil {
				t.Errorf("Status: %v", err)
			}
		}()
	}
	wg.Wait()

	slot := repo.slots["ana"]
	if slot.Streak != 3 || slot.LastNotifiedMilestone != 3 {
		t.Fatalf("unexpected slot streak=%d milestone=%d", slot.Streak, slot.LastNotifiedMilestone)
	}
	for _, rec := range slot.LoginDates {
		if rec.Date == "2024-03-06" && rec.Count != logins {
			t.Fatalf("today's count=%d, want %d", rec.Count, logins)
		}
	}

	milestones := 0
	for _, n := range sink.notices {
		if n.Kind == domain.NoticeMilestone {
			milestones++
		}
	}
	if milestones != 1 {
		t.Fatalf("expected the 3-day milestone exactly once, got %d", milestones)
	}
}

func TestStreakService_OtherUsersAreNotBlocked(t *testing.T) {
	repo := newMemStreakRepo()
	svc := newStreakSvc(repo, &captureSink{}, &fakeClock{t: time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)})

	unlock := svc.locks.lock("ana")
	defer unlock()

	done := make(chan error, 1)
	go func() {
		_, err := svc.RecordLogin(context.Background(), "ben")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RecordLogin: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("a held lock for ana blocked ben")
	}
}
