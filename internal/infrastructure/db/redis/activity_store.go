package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const activityKey = "activity:last"

// ActivityStore tracks the last activity of every user in a sorted set
// scored by unix milliseconds.
type ActivityStore struct {
	client redis.UniversalClient
}

func NewActivityStore(client redis.UniversalClient) *ActivityStore {
	return &ActivityStore{client: client}
}

var _ ports.ActivityStore = (*ActivityStore)(nil)

// Touch moves the user's last activity to at.
func (s *ActivityStore) Touch(ctx context.Context, username string, at time.Time) error {
	err := s.client.ZAdd(ctx, activityKey, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: username,
	}).Err()
	if err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return nil
}

// ActiveSince lists users active at or after since.
func (s *ActivityStore) ActiveSince(ctx context.Context, since time.Time) ([]string, error) {
	users, err := s.client.ZRangeByScore(ctx, activityKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return users, nil
}

// Prune drops users whose last activity is before the cutoff.
func (s *ActivityStore) Prune(ctx context.Context, before time.Time) error {
	err := s.client.ZRemRangeByScore(ctx, activityKey,
		"-inf", "("+strconv.FormatInt(before.UnixMilli(), 10)).Err()
	if err != nil {
		return fmt.Errorf("prune activity: %w", err)
	}
	return nil
}
