package queue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

type memInbox struct {
	mu      sync.Mutex
	notices []domain.Notice
	failFor string
}

func (m *memInbox) Insert(_ context.Context, n *domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.Username == m.failFor {
		return errors.New("boom")
	}
	m.notices = append(m.notices, *n)
	return nil
}

func (m *memInbox) ListByUser(_ context.Context, username string, _ int64) ([]domain.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notice
	for _, n := range m.notices {
		if n.Username == username {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memInbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notices)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNoticeDispatcher_PreservesPerUserOrder(t *testing.T) {
	inbox := &memInbox{}
	d := NewNoticeDispatcher(4, inbox, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, streak := range []int{3, 7, 14} {
		if err := d.Deliver(ctx, domain.Notice{ID: "n", Username: "ana", Streak: streak}); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	_ = d.Deliver(ctx, domain.Notice{ID: "m", Username: "ben", Streak: 30})

	waitFor(t, func() bool { return inbox.len() == 4 })

	got, _ := inbox.ListByUser(ctx, "ana", 0)
	var streaks []int
	for _, n := range got {
		streaks = append(streaks, n.Streak)
	}
	if !slices.Equal(streaks, []int{3, 7, 14}) {
		t.Fatalf("expected ordered delivery, got %v", streaks)
	}
}

func TestNoticeDispatcher_DropsWhenFull(t *testing.T) {
	d := NewNoticeDispatcher(1, &memInbox{}, zerolog.Nop())
	ctx := context.Background()

	// Not started, so nothing drains the channel.
	for i := 0; i < channelBuffer; i++ {
		if err := d.Deliver(ctx, domain.Notice{Username: "ana"}); err != nil {
			t.Fatalf("Deliver %d: %v", i, err)
		}
	}
	if err := d.Deliver(ctx, domain.Notice{Username: "ana"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestNoticeDispatcher_StoreFailureKeepsWorkerAlive(t *testing.T) {
	inbox := &memInbox{failFor: "ana"}
	d := NewNoticeDispatcher(1, inbox, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	_ = d.Deliver(ctx, domain.Notice{Username: "ana"})
	_ = d.Deliver(ctx, domain.Notice{Username: "ben"})

	waitFor(t, func() bool { return inbox.len() == 1 })
}

func TestNoticeDispatcher_DrainsOnShutdown(t *testing.T) {
	inbox := &memInbox{}
	d := NewNoticeDispatcher(2, inbox, zerolog.Nop())

	for _, user := range []string{"ana", "ben", "carl"} {
		_ = d.Deliver(context.Background(), domain.Notice{Username: user})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if inbox.len() != 3 {
		t.Fatalf("expected queued notices to be stored on shutdown, got %d", inbox.len())
	}
}

func TestNoticeDispatcher_ShardIndexStable(t *testing.T) {
	d := NewNoticeDispatcher(0, &memInbox{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	if d.shardIndex("ana") != d.shardIndex("ana") {
		t.Fatal("shard index must be deterministic")
	}
}
