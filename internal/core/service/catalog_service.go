package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const defaultViewTTL = time.Minute

// Cached view names. Keys are "view:<scope>:<name>".
const (
	viewCourses       = "courses"
	viewCourse        = "course"
	viewApplications  = "applications"
	viewProfile       = "profile"
	viewNotifications = "notifications"
	viewCertificates  = "certificates"
)

// CatalogService implements ports.CatalogService on top of the backend with
// a read-through view cache. Views are scoped per user session; successful
// mutations drop the views they affect for that user.
type CatalogService struct {
	backend ports.Backend
	cache   ports.ViewCache
	ttl     time.Duration
	policy  *bluemonday.Policy
	log     zerolog.Logger
}

// NewCatalogService builds the service. cache may be nil to disable caching.
func NewCatalogService(backend ports.Backend, cache ports.ViewCache, ttl time.Duration, log zerolog.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &CatalogService{
		backend: backend,
		cache:   cache,
		ttl:     ttl,
		policy:  bluemonday.StrictPolicy(),
		log:     log,
	}
}

func (s *CatalogService) ListCourses(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error) {
	key := viewKey("public", viewCourses+":"+courseQueryKey(q))
	return cached(ctx, s, key, func() (*domain.CoursePage, error) {
		return s.backend.ListCourses(ctx, q)
	})
}

func (s *CatalogService) GetCourse(ctx context.Context, user *domain.AuthenticatedUser, courseID int) (json.RawMessage, error) {
	if err := requireSession(user); err != nil {
		return nil, err
	}
	key := viewKey(sessionScope(user), viewCourse+":"+strconv.Itoa(courseID))
	return cached(ctx, s, key, func() (json.RawMessage, error) {
		return s.backend.GetCourse(ctx, user.Token, courseID)
	})
}

func (s *CatalogService) ListApplications(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CourseApplication, error) {
	if err := requireSession(user); err != nil {
		return nil, err
	}
	key := viewKey(sessionScope(user), viewApplications)
	return cached(ctx, s, key, func() ([]domain.CourseApplication, error) {
		return s.backend.ListApplications(ctx, user.Token)
	})
}

// Apply submits an application for the signed-in student.
func (s *CatalogService) Apply(ctx context.Context, user *domain.AuthenticatedUser, courseID int, message string) (*domain.CourseApplication, error) {
	if err := requireRole(user, domain.RoleStudent); err != nil {
		return nil, err
	}

	app, err := s.backend.CreateApplication(ctx, user.Token, courseID, s.sanitize(message))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, user, viewApplications)
	return app, nil
}

func (s *CatalogService) CancelApplication(ctx context.Context, user *domain.AuthenticatedUser, applicationID string) error {
	if err := requireRole(user, domain.RoleStudent); err != nil {
		return err
	}
	if err := s.backend.CancelApplication(ctx, user.Token, applicationID); err != nil {
		return err
	}
	s.invalidate(ctx, user, viewApplications)
	return nil
}

// ReviewApplication approves or rejects an application. Only instructors may
// review, and only to a final status.
func (s *CatalogService) ReviewApplication(ctx context.Context, user *domain.AuthenticatedUser, applicationID string, status domain.ApplicationStatus) (*domain.CourseApplication, error) {
	if err := requireRole(user, domain.RoleStaff); err != nil {
		return nil, err
	}
	if !status.Reviewable() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	app, err := s.backend.UpdateApplicationStatus(ctx, user.Token, applicationID, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, user, viewApplications)
	return app, nil
}

func (s *CatalogService) GetProfile(ctx context.Context, user *domain.AuthenticatedUser) (*domain.StudentProfile, error) {
	if err := requireRole(user, domain.RoleStudent); err != nil {
		return nil, err
	}
	key := viewKey(sessionScope(user), viewProfile)
	return cached(ctx, s, key, func() (*domain.StudentProfile, error) {
		return s.backend.GetProfile(ctx, user.Token)
	})
}

func (s *CatalogService) UpdateProfile(ctx context.Context, user *domain.AuthenticatedUser, profile domain.StudentProfile) (*domain.StudentProfile, error) {
	if err := requireRole(user, domain.RoleStudent); err != nil {
		return nil, err
	}
	profile.Bio = s.sanitize(profile.Bio)

	updated, err := s.backend.UpdateProfile(ctx, user.Token, profile)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, user, viewProfile)
	return updated, nil
}

func (s *CatalogService) UploadProfilePicture(ctx context.Context, user *domain.AuthenticatedUser, filename string, content io.Reader) (*domain.StudentProfile, error) {
	if err := requireRole(user, domain.RoleStudent); err != nil {
		return nil, err
	}

	updated, err := s.backend.UploadProfilePicture(ctx, user.Token, filename, content)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, user, viewProfile)
	return updated, nil
}

func (s *CatalogService) ListNotifications(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.Notification, error) {
	if err := requireSession(user); err != nil {
		return nil, err
	}
	key := viewKey(sessionScope(user), viewNotifications)
	return cached(ctx, s, key, func() ([]domain.Notification, error) {
		return s.backend.ListNotifications(ctx, user.Token)
	})
}

// ReplyNotification answers a course comment notification as an instructor.
func (s *CatalogService) ReplyNotification(ctx context.Context, user *domain.AuthenticatedUser, reply domain.NotificationReply) error {
	if err := requireRole(user, domain.RoleStaff); err != nil {
		return err
	}
	reply.Message = s.sanitize(reply.Message)
	if reply.Message == "" {
		return domain.ErrEmptyMessage
	}

	if err := s.backend.ReplyNotification(ctx, user.Token, reply); err != nil {
		return err
	}
	s.invalidate(ctx, user, viewNotifications)
	return nil
}

// ListCertificates is the cached certificate list used by CertificateService.
func (s *CatalogService) ListCertificates(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CertificateCourse, error) {
	if err := requireRole(user, domain.RoleStudent); err != nil {
		return nil, err
	}
	key := viewKey(sessionScope(user), viewCertificates)
	return cached(ctx, s, key, func() ([]domain.CertificateCourse, error) {
		return s.backend.ListCertificates(ctx, user.Token)
	})
}

// cached serves key from the view cache, loading and storing it on a miss.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *CatalogService, key string, load func() (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("key", key).Msg("view cache read failed")
		case ok:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				metrics.ViewCacheTotal.WithLabelValues("hit").Inc()
				return v, nil
			}
			s.log.Warn().Str("key", key).Msg("view cache entry undecodable")
		}
		metrics.ViewCacheTotal.WithLabelValues("miss").Inc()
	}

	v, err := load()
	if err != nil {
		return zero, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("view cache write failed")
			}
		}
	}
	return v, nil
}

func (s *CatalogService) invalidate(ctx context.Context, user *domain.AuthenticatedUser, views ...string) {
	if s.cache == nil {
		return
	}
	scope := sessionScope(user)
	keys := make([]string, 0, len(views))
	for _, v := range views {
		keys = append(keys, viewKey(scope, v))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("view cache invalidation failed")
	}
}

// sanitize strips markup from free text forwarded upstream.
func (s *CatalogService) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

func viewKey(scope, name string) string {
	return "view:" + scope + ":" + name
}

// sessionScope derives the cache scope of a session. The upstream token is
// part of the scope so a new sign-in never sees views of a previous one.
func sessionScope(user *domain.AuthenticatedUser) string {
	sum := blake2b.Sum256([]byte(user.Username + "\x00" + user.Token))
	return hex.EncodeToString(sum[:16])
}

func courseQueryKey(q domain.CourseQuery) string {
	featured := "-"
	if q.Featured != nil {
		featured = strconv.FormatBool(*q.Featured)
	}
	raw := strings.Join([]string{
		q.Category, q.Level, q.Search, featured,
		strconv.Itoa(q.Page), strconv.Itoa(q.PageSize),
	}, "\x00")
	sum := blake2b.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:8])
}

func requireSession(user *domain.AuthenticatedUser) error {
	if user == nil || user.Token == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requireRole(user *domain.AuthenticatedUser, role string) error {
	if err := requireSession(user); err != nil {
		return err
	}
	if user.Role != role {
		return domain.ErrForbidden
	}
	return nil
}
