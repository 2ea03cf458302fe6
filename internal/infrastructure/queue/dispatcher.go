package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// ErrQueueFull is returned by Deliver when the user's worker has no room left.
var ErrQueueFull = errors.New("notice queue full")

// NoticeDispatcher stores notices asynchronously. Notices are sharded by
// username over a fixed set of workers, so one user's notices are stored in
// the order they were fired.
type NoticeDispatcher struct {
	workers []chan domain.Notice
	inbox   ports.NoticeRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewNoticeDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewNoticeDispatcher(numWorkers int, inbox ports.NoticeRepository, log zerolog.Logger) *NoticeDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &NoticeDispatcher{
		workers: make([]chan domain.Notice, numWorkers),
		inbox:   inbox,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notice, channelBuffer)
	}
	return d
}

var _ ports.NoticeSink = (*NoticeDispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after storing what is already queued.
func (d *NoticeDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *NoticeDispatcher) Wait() {
	d.wg.Wait()
}

// Deliver queues notice on the worker responsible for its user. It never
// blocks: a full worker drops the notice.
func (d *NoticeDispatcher) Deliver(_ context.Context, notice domain.Notice) error {
	idx := d.shardIndex(notice.Username)
	select {
	case d.workers[idx] <- notice:
		metrics.NoticeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.NoticeDeliveryTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *NoticeDispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *NoticeDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notice) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx), id, ch)
			return
		case notice := <-ch:
			d.store(ctx, id, notice)
		}
	}
}

func (d *NoticeDispatcher) drain(ctx context.Context, id int, ch <-chan domain.Notice) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	for {
		select {
		case notice := <-ch:
			d.store(ctx, id, notice)
		default:
			return
		}
	}
}

func (d *NoticeDispatcher) store(ctx context.Context, id int, notice domain.Notice) {
	metrics.NoticeQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(d.workers[id])))

	if err := d.inbox.Insert(ctx, &notice); err != nil {
		metrics.NoticeDeliveryTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("username", notice.Username).
			Str("notice_id", notice.ID).
			Int("worker_id", id).
			Msg("notice store failed")
		return
	}

	metrics.NoticeDeliveryTotal.WithLabelValues("stored").Inc()
	d.log.Info().
		Str("username", notice.Username).
		Str("kind", string(notice.Kind)).
		Str("title", notice.Title).
		Int("streak", notice.Streak).
		Msg("notice delivered")
}
