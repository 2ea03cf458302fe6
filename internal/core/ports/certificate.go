package ports

import (
	"context"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// CertificateSource lists the courses a student holds certificates for.
type CertificateSource interface {
	ListCertificates(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CertificateCourse, error)
}

// CertificateRenderer turns certificate data into a PDF document.
type CertificateRenderer interface {
	Render(data domain.CertificateData) ([]byte, error)
}

// CertificateAuditRepository records every issued certificate.
type CertificateAuditRepository interface {
	Record(ctx context.Context, issue *domain.CertificateIssue) error
}

// CertificateFile is a rendered certificate ready for download.
type CertificateFile struct {
	FileName string
	Content  []byte
}

type CertificateService interface {
	List(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CertificateCourse, error)
	Download(ctx context.Context, user *domain.AuthenticatedUser, courseID int) (*CertificateFile, error)
}
