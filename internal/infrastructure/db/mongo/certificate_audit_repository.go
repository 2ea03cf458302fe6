package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const collectionCertificateIssues = "certificate_issues"

// CertificateAuditRepository appends one document per rendered certificate.
type CertificateAuditRepository struct {
	col *mongo.Collection
}

func NewCertificateAuditRepository(db *mongo.Database) *CertificateAuditRepository {
	return &CertificateAuditRepository{col: db.Collection(collectionCertificateIssues)}
}

var _ ports.CertificateAuditRepository = (*CertificateAuditRepository)(nil)

func (r *CertificateAuditRepository) Record(ctx context.Context, issue *domain.CertificateIssue) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	issue.IssuedAt = issue.IssuedAt.UTC()
	if _, err := r.col.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("record certificate issue: %w", err)
	}
	return nil
}
