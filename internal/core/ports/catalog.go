package ports

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// ViewCache stores rendered read views. A miss is reported as (nil, false, nil).
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogService fronts the backend resources a signed-in user browses.
type CatalogService interface {
	ListCourses(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error)
	GetCourse(ctx context.Context, user *domain.AuthenticatedUser, courseID int) (json.RawMessage, error)

	ListApplications(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CourseApplication, error)
	Apply(ctx context.Context, user *domain.AuthenticatedUser, courseID int, message string) (*domain.CourseApplication, error)
	CancelApplication(ctx context.Context, user *domain.AuthenticatedUser, applicationID string) error
	ReviewApplication(ctx context.Context, user *domain.AuthenticatedUser, applicationID string, status domain.ApplicationStatus) (*domain.CourseApplication, error)

	GetProfile(ctx context.Context, user *domain.AuthenticatedUser) (*domain.StudentProfile, error)
	UpdateProfile(ctx context.Context, user *domain.AuthenticatedUser, profile domain.StudentProfile) (*domain.StudentProfile, error)
	UploadProfilePicture(ctx context.Context, user *domain.AuthenticatedUser, filename string, content io.Reader) (*domain.StudentProfile, error)

	ListNotifications(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.Notification, error)
	ReplyNotification(ctx context.Context, user *domain.AuthenticatedUser, reply domain.NotificationReply) error
}
