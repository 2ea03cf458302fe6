package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

var (
	student = &domain.AuthenticatedUser{Username: "ana", Email: "ana@example.com", Role: domain.RoleStudent, Token: "tok-s"}
	staff   = &domain.AuthenticatedUser{Username: "ben", Email: "ben@example.com", Role: domain.RoleStaff, StaffID: "17", Token: "tok-t"}
)

// newContext builds an echo context with the validator installed and, when
// user is non-nil, the signed-in user the Session middleware would store.
func newContext(method, target, body string, user *domain.AuthenticatedUser) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set("user", user)
	}
	return c, rec
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password, userType string) (string, *domain.AuthenticatedUser, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password, userType string) (string, *domain.AuthenticatedUser, error) {
	return s.loginFn(ctx, email, password, userType)
}

func (s *stubAuthService) Initialized() bool { return true }

// ---------------------------------------------------------------------------
// Streak
// ---------------------------------------------------------------------------

type stubStreakService struct {
	recordFn  func(ctx context.Context, username string) (*ports.StreakResult, error)
	statusFn  func(ctx context.Context, username string) (*ports.StreakStatus, error)
	noticesFn func(ctx context.Context, username string, limit int64) ([]domain.Notice, error)
}

func (s *stubStreakService) RecordLogin(ctx context.Context, username string) (*ports.StreakResult, error) {
	return s.recordFn(ctx, username)
}

func (s *stubStreakService) Status(ctx context.Context, username string) (*ports.StreakStatus, error) {
	return s.statusFn(ctx, username)
}

func (s *stubStreakService) Notices(ctx context.Context, username string, limit int64) ([]domain.Notice, error) {
	return s.noticesFn(ctx, username, limit)
}

type stubSink struct {
	forwarded bool
	pings     []string
}

func (s *stubSink) Ping(_ context.Context, username string) (bool, error) {
	s.pings = append(s.pings, username)
	return s.forwarded, nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

type stubCatalog struct {
	listCoursesFn   func(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error)
	getCourseFn     func(ctx context.Context, user *domain.AuthenticatedUser, id int) (json.RawMessage, error)
	listAppsFn      func(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CourseApplication, error)
	applyFn         func(ctx context.Context, user *domain.AuthenticatedUser, courseID int, message string) (*domain.CourseApplication, error)
	cancelFn        func(ctx context.Context, user *domain.AuthenticatedUser, id string) error
	reviewFn        func(ctx context.Context, user *domain.AuthenticatedUser, id string, status domain.ApplicationStatus) (*domain.CourseApplication, error)
	getProfileFn    func(ctx context.Context, user *domain.AuthenticatedUser) (*domain.StudentProfile, error)
	updateProfileFn func(ctx context.Context, user *domain.AuthenticatedUser, p domain.StudentProfile) (*domain.StudentProfile, error)
	uploadFn        func(ctx context.Context, user *domain.AuthenticatedUser, filename string, content io.Reader) (*domain.StudentProfile, error)
	listNotifFn     func(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.Notification, error)
	replyFn         func(ctx context.Context, user *domain.AuthenticatedUser, reply domain.NotificationReply) error
}

func (s *stubCatalog) ListCourses(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error) {
	if s.listCoursesFn == nil {
		return nil, errNotStubbed
	}
	return s.listCoursesFn(ctx, q)
}

func (s *stubCatalog) GetCourse(ctx context.Context, user *domain.AuthenticatedUser, id int) (json.RawMessage, error) {
	if s.getCourseFn == nil {
		return nil, errNotStubbed
	}
	return s.getCourseFn(ctx, user, id)
}

func (s *stubCatalog) ListApplications(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CourseApplication, error) {
	if s.listAppsFn == nil {
		return nil, errNotStubbed
	}
	return s.listAppsFn(ctx, user)
}

func (s *stubCatalog) Apply(ctx context.Context, user *domain.AuthenticatedUser, courseID int, message string) (*domain.CourseApplication, error) {
	if s.applyFn == nil {
		return nil, errNotStubbed
	}
	return s.applyFn(ctx, user, courseID, message)
}

func (s *stubCatalog) CancelApplication(ctx context.Context, user *domain.AuthenticatedUser, id string) error {
	if s.cancelFn == nil {
		return errNotStubbed
	}
	return s.cancelFn(ctx, user, id)
}

func (s *stubCatalog) ReviewApplication(ctx context.Context, user *domain.AuthenticatedUser, id string, status domain.ApplicationStatus) (*domain.CourseApplication, error) {
	if s.reviewFn == nil {
		return nil, errNotStubbed
	}
	return s.reviewFn(ctx, user, id, status)
}

func (s *stubCatalog) GetProfile(ctx context.Context, user *domain.AuthenticatedUser) (*domain.StudentProfile, error) {
	if s.getProfileFn == nil {
		return nil, errNotStubbed
	}
	return s.getProfileFn(ctx, user)
}

func (s *stubCatalog) UpdateProfile(ctx context.Context, user *domain.AuthenticatedUser, p domain.StudentProfile) (*domain.StudentProfile, error) {
	if s.updateProfileFn == nil {
		return nil, errNotStubbed
	}
	return s.updateProfileFn(ctx, user, p)
}

func (s *stubCatalog) UploadProfilePicture(ctx context.Context, user *domain.AuthenticatedUser, filename string, content io.Reader) (*domain.StudentProfile, error) {
	if s.uploadFn == nil {
		return nil, errNotStubbed
	}
	return s.uploadFn(ctx, user, filename, content)
}

func (s *stubCatalog) ListNotifications(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.Notification, error) {
	if s.listNotifFn == nil {
		return nil, errNotStubbed
	}
	return s.listNotifFn(ctx, user)
}

func (s *stubCatalog) ReplyNotification(ctx context.Context, user *domain.AuthenticatedUser, reply domain.NotificationReply) error {
	if s.replyFn == nil {
		return errNotStubbed
	}
	return s.replyFn(ctx, user, reply)
}

// ---------------------------------------------------------------------------
// Certificates
// ---------------------------------------------------------------------------

type stubCertificates struct {
	listFn     func(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CertificateCourse, error)
	downloadFn func(ctx context.Context, user *domain.AuthenticatedUser, courseID int) (*ports.CertificateFile, error)
}

func (s *stubCertificates) List(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CertificateCourse, error) {
	return s.listFn(ctx, user)
}

func (s *stubCertificates) Download(ctx context.Context, user *domain.AuthenticatedUser, courseID int) (*ports.CertificateFile, error) {
	return s.downloadFn(ctx, user, courseID)
}
