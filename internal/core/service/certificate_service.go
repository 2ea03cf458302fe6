package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const defaultStudentName = "Student"

// CertificateService issues PDF certificates for completed courses.
type CertificateService struct {
	source   ports.CertificateSource
	renderer ports.CertificateRenderer
	audit    ports.CertificateAuditRepository
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
}

// NewCertificateService wires the certificate list, renderer and audit log.
// audit may be nil.
func NewCertificateService(source ports.CertificateSource, renderer ports.CertificateRenderer, audit ports.CertificateAuditRepository, loc *time.Location, log zerolog.Logger) *CertificateService {
	if loc == nil {
		loc = time.UTC
	}
	return &CertificateService{
		source:   source,
		renderer: renderer,
		audit:    audit,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

func (s *CertificateService) List(ctx context.Context, user *domain.AuthenticatedUser) ([]domain.CertificateCourse, error) {
	return s.source.ListCertificates(ctx, user)
}

// Download renders the certificate of a completed course.
func (s *CertificateService) Download(ctx context.Context, user *domain.AuthenticatedUser, courseID int) (*ports.CertificateFile, error) {
	courses, err := s.source.ListCertificates(ctx, user)
	if err != nil {
		return nil, err
	}

	var course *domain.CertificateCourse
	for i := range courses {
		if courses[i].ID == courseID {
			course = &courses[i]
			break
		}
	}
	if course == nil {
		metrics.CertificatesRenderedTotal.WithLabelValues("not_found").Inc()
		return nil, domain.ErrCertificateNotFound
	}
	if !course.Completed {
		metrics.CertificatesRenderedTotal.WithLabelValues("not_earned").Inc()
		return nil, domain.ErrCertificateNotEarned
	}

	now := s.now().In(s.loc)
	data := domain.CertificateData{
		StudentName:    studentName(user),
		CourseTitle:    course.Title,
		InstructorName: course.Instructor.Name,
		IssueDate:      now.Format(domain.IssueDateLayout),
		CourseID:       strconv.Itoa(course.ID),
		Category:       course.Category,
	}

	start := time.Now()
	pdf, err := s.renderer.Render(data)
	metrics.CertificateRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CertificatesRenderedTotal.WithLabelValues("error").Inc()
		if !errors.Is(err, domain.ErrRenderFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
		}
		return nil, err
	}
	metrics.CertificatesRenderedTotal.WithLabelValues("ok").Inc()

	s.record(ctx, user, course, data, len(pdf), now)

	return &ports.CertificateFile{
		FileName: domain.CertificateFileName(course.Title),
		Content:  pdf,
	}, nil
}

func (s *CertificateService) record(ctx context.Context, user *domain.AuthenticatedUser, course *domain.CertificateCourse, data domain.CertificateData, size int, at time.Time) {
	if s.audit == nil {
		return
	}
	issue := &domain.CertificateIssue{
		Username:  user.Username,
		CourseID:  course.ID,
		Title:     course.Title,
		IssueDate: data.IssueDate,
		SizeBytes: size,
		IssuedAt:  at.UTC(),
	}
	if err := s.audit.Record(ctx, issue); err != nil {
		s.log.Warn().Err(err).
			Str("username", user.Username).
			Int("course_id", course.ID).
			Msg("certificate audit failed")
	}
}

func studentName(user *domain.AuthenticatedUser) string {
	if user == nil || user.Username == "" {
		return defaultStudentName
	}
	return user.Username
}
