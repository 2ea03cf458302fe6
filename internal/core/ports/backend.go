package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// Backend is the external EduLearn REST API. Every call except Login and
// ListCourses forwards the caller's upstream bearer token.
type Backend interface {
	Login(ctx context.Context, email, password, userType string) (*domain.AuthenticatedUser, error)

	ListCourses(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error)
	GetCourse(ctx context.Context, token string, courseID int) (json.RawMessage, error)

	ListApplications(ctx context.Context, token string) ([]domain.CourseApplication, error)
	CreateApplication(ctx context.Context, token string, courseID int, message string) (*domain.CourseApplication, error)
	CancelApplication(ctx context.Context, token, applicationID string) error
	UpdateApplicationStatus(ctx context.Context, token, applicationID string, status domain.ApplicationStatus) (*domain.CourseApplication, error)

	GetProfile(ctx context.Context, token string) (*domain.StudentProfile, error)
	UpdateProfile(ctx context.Context, token string, profile domain.StudentProfile) (*domain.StudentProfile, error)
	UploadProfilePicture(ctx context.Context, token, filename string, content io.Reader) (*domain.StudentProfile, error)

	ListCertificates(ctx context.Context, token string) ([]domain.CertificateCourse, error)

	ListNotifications(ctx context.Context, token string) ([]domain.Notification, error)
	ReplyNotification(ctx context.Context, token string, reply domain.NotificationReply) error
}
