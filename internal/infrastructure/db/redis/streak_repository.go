package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const (
	streakKeyPrefix = "streak-store:"
	maxUpdateTries  = 10
)

// ErrStreakConflict is returned when a slot kept changing under every retry.
var ErrStreakConflict = errors.New("streak slot changed concurrently")

// StreakRepository keeps one JSON slot per user. Slots never expire.
type StreakRepository struct {
	client redis.UniversalClient
	log    zerolog.Logger
}

// NewStreakRepository creates a StreakRepository on the given client.
func NewStreakRepository(client redis.UniversalClient, log zerolog.Logger) *StreakRepository {
	return &StreakRepository{client: client, log: log}
}

var _ ports.StreakRepository = (*StreakRepository)(nil)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Load returns the stored state. A missing slot and an undecodable slot both
// yield a fresh empty state; the latter is logged.
func (r *StreakRepository) Load(ctx context.Context, username string) (*domain.StreakState, error) {
	return r.load(ctx, r.client, username)
}

// Update runs fn inside a WATCH/MULTI transaction on the user's slot. When
// another writer touches the slot first the transaction is retried with a
// fresh read.
func (r *StreakRepository) Update(ctx context.Context, username string, fn ports.StreakMutation) (*domain.StreakState, error) {
	key := streakKey(username)

	for attempt := 0; attempt < maxUpdateTries; attempt++ {
		var state *domain.StreakState
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			st, err := r.load(ctx, tx, username)
			if err != nil {
				return err
			}
			changed, err := fn(st)
			if err != nil {
				return err
			}
			state = st
			if !changed {
				return nil
			}

			raw, err := json.Marshal(st)
			if err != nil {
				return fmt.Errorf("encode streak: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, raw, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			r.log.Debug().Str("username", username).Int("attempt", attempt+1).Msg("streak slot contended, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update streak: %w", err)
		}
		return state, nil
	}
	return nil, fmt.Errorf("update streak %s: %w", username, ErrStreakConflict)
}

func (r *StreakRepository) load(ctx context.Context, c getter, username string) (*domain.StreakState, error) {
	raw, err := c.Get(ctx, streakKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewStreakState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}

	state := domain.NewStreakState()
	if err := json.Unmarshal(raw, state); err != nil {
		r.log.Warn().Err(err).Str("username", username).Msg("discarding corrupt streak slot")
		return domain.NewStreakState(), nil
	}
	state.Normalize()
	return state, nil
}

func streakKey(username string) string {
	return streakKeyPrefix + username
}
