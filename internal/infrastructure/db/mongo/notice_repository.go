package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const collectionNotices = "notices"

// NoticeRepository is the notice inbox, one document per delivered notice.
type NoticeRepository struct {
	col *mongo.Collection
}

func NewNoticeRepository(db *mongo.Database) *NoticeRepository {
	return &NoticeRepository{col: db.Collection(collectionNotices)}
}

var _ ports.NoticeRepository = (*NoticeRepository)(nil)

// EnsureIndexes creates the per-user listing index.
func (r *NoticeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("username_created_at"),
	})
	if err != nil {
		return fmt.Errorf("notice indexes: %w", err)
	}
	return nil
}

// Insert stores a notice. The notice ID is its document key, so a redelivered
// notice is rejected as a duplicate instead of shown twice.
func (r *NoticeRepository) Insert(ctx context.Context, notice *domain.Notice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	notice.CreatedAt = notice.CreatedAt.UTC()
	if _, err := r.col.InsertOne(ctx, notice); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

// ListByUser returns the newest notices of username first.
func (r *NoticeRepository) ListByUser(ctx context.Context, username string, limit int64) ([]domain.Notice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer cursor.Close(ctx)

	notices := []domain.Notice{}
	if err := cursor.All(ctx, &notices); err != nil {
		return nil, fmt.Errorf("decode notices: %w", err)
	}
	return notices, nil
}
