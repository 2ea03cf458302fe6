package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Streak slot + notices
// ---------------------------------------------------------------------------

// memStreakRepo is safe for concurrent use but its Update is not atomic:
// the read and the write are separate critical sections, with delay between.
type memStreakRepo struct {
	mu      sync.Mutex
	slots   map[string]domain.StreakState
	loadErr error
	saveErr error
	saves   int
	delay   time.Duration
}

func newMemStreakRepo() *memStreakRepo {
	return &memStreakRepo{slots: make(map[string]domain.StreakState)}
}

func (r *memStreakRepo) Update(_ context.Context, username string, fn ports.StreakMutation) (*domain.StreakState, error) {
	state, err := r.load(username)
	if err != nil {
		return nil, err
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	changed, err := fn(state)
	if err != nil || !changed {
		return state, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.saves++
	r.slots[username] = *state
	return state, nil
}

func (r *memStreakRepo) load(username string) (*domain.StreakState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	st, ok := r.slots[username]
	if !ok {
		return domain.NewStreakState(), nil
	}
	st.LoginDates = append([]domain.StreakRecord(nil), st.LoginDates...)
	st.CurrentWeekDays = append([]domain.StreakRecord(nil), st.CurrentWeekDays...)
	return &st, nil
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

type captureSink struct {
	mu      sync.Mutex
	notices []domain.Notice
	err     error
}

func (s *captureSink) Deliver(_ context.Context, n domain.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return s.err
}

type stubInbox struct {
	listFn func(ctx context.Context, username string, limit int64) ([]domain.Notice, error)
}

func (s *stubInbox) Insert(context.Context, *domain.Notice) error { return nil }

func (s *stubInbox) ListByUser(ctx context.Context, username string, limit int64) ([]domain.Notice, error) {
	return s.listFn(ctx, username, limit)
}

// ---------------------------------------------------------------------------
// Backend
// ---------------------------------------------------------------------------

type stubBackend struct {
	loginFn             func(ctx context.Context, email, password, userType string) (*domain.AuthenticatedUser, error)
	listCoursesFn       func(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error)
	getCourseFn         func(ctx context.Context, token string, id int) (json.RawMessage, error)
	listApplicationsFn  func(ctx context.Context, token string) ([]domain.CourseApplication, error)
	createApplicationFn func(ctx context.Context, token string, courseID int, message string) (*domain.CourseApplication, error)
	cancelApplicationFn func(ctx context.Context, token, id string) error
	updateStatusFn      func(ctx context.Context, token, id string, status domain.ApplicationStatus) (*domain.CourseApplication, error)
	getProfileFn        func(ctx context.Context, token string) (*domain.StudentProfile, error)
	updateProfileFn     func(ctx context.Context, token string, p domain.StudentProfile) (*domain.StudentProfile, error)
	uploadPictureFn     func(ctx context.Context, token, filename string, r io.Reader) (*domain.StudentProfile, error)
	listCertificatesFn  func(ctx context.Context, token string) ([]domain.CertificateCourse, error)
	listNotificationsFn func(ctx context.Context, token string) ([]domain.Notification, error)
	replyFn             func(ctx context.Context, token string, reply domain.NotificationReply) error
}

var errNotStubbed = errors.New("not stubbed")

func (b *stubBackend) Login(ctx context.Context, email, password, userType string) (*domain.AuthenticatedUser, error) {
	if b.loginFn == nil {
		return nil, errNotStubbed
	}
	return b.loginFn(ctx, email, password, userType)
}

func (b *stubBackend) ListCourses(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error) {
	if b.listCoursesFn == nil {
		return nil, errNotStubbed
	}
	return b.listCoursesFn(ctx, q)
}

func (b *stubBackend) GetCourse(ctx context.Context, token string, id int) (json.RawMessage, error) {
	if b.getCourseFn == nil {
		return nil, errNotStubbed
	}
	return b.getCourseFn(ctx, token, id)
}

func (b *stubBackend) ListApplications(ctx context.Context, token string) ([]domain.CourseApplication, error) {
	if b.listApplicationsFn == nil {
		return nil, errNotStubbed
	}
	return b.listApplicationsFn(ctx, token)
}

func (b *stubBackend) CreateApplication(ctx context.Context, token string, courseID int, message string) (*domain.CourseApplication, error) {
	if b.createApplicationFn == nil {
		return nil, errNotStubbed
	}
	return b.createApplicationFn(ctx, token, courseID, message)
}

func (b *stubBackend) CancelApplication(ctx context.Context, token, id string) error {
	if b.cancelApplicationFn == nil {
		return errNotStubbed
	}
	return b.cancelApplicationFn(ctx, token, id)
}

func (b *stubBackend) UpdateApplicationStatus(ctx context.Context, token, id string, status domain.ApplicationStatus) (*domain.CourseApplication, error) {
	if b.updateStatusFn == nil {
		return nil, errNotStubbed
	}
	return b.updateStatusFn(ctx, token, id, status)
}

func (b *stubBackend) GetProfile(ctx context.Context, token string) (*domain.StudentProfile, error) {
	if b.getProfileFn == nil {
		return nil, errNotStubbed
	}
	return b.getProfileFn(ctx, token)
}

func (b *stubBackend) UpdateProfile(ctx context.Context, token string, p domain.StudentProfile) (*domain.StudentProfile, error) {
	if b.updateProfileFn == nil {
		return nil, errNotStubbed
	}
	return b.updateProfileFn(ctx, token, p)
}

func (b *stubBackend) UploadProfilePicture(ctx context.Context, token, filename string, r io.Reader) (*domain.StudentProfile, error) {
	if b.uploadPictureFn == nil {
		return nil, errNotStubbed
	}
	return b.uploadPictureFn(ctx, token, filename, r)
}

func (b *stubBackend) ListCertificates(ctx context.Context, token string) ([]domain.CertificateCourse, error) {
	if b.listCertificatesFn == nil {
		return nil, errNotStubbed
	}
	return b.listCertificatesFn(ctx, token)
}

func (b *stubBackend) ListNotifications(ctx context.Context, token string) ([]domain.Notification, error) {
	if b.listNotificationsFn == nil {
		return nil, errNotStubbed
	}
	return b.listNotificationsFn(ctx, token)
}

func (b *stubBackend) ReplyNotification(ctx context.Context, token string, reply domain.NotificationReply) error {
	if b.replyFn == nil {
		return errNotStubbed
	}
	return b.replyFn(ctx, token, reply)
}

// ---------------------------------------------------------------------------
// View cache + activity store
// ---------------------------------------------------------------------------

type memCache struct {
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type memActivity struct {
	mu      sync.Mutex
	last    map[string]time.Time
	touches int
}

func newMemActivity() *memActivity {
	return &memActivity{last: make(map[string]time.Time)}
}

func (a *memActivity) Touch(_ context.Context, username string, at time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touches++
	a.last[username] = at
	return nil
}

func (a *memActivity) ActiveSince(_ context.Context, since time.Time) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for u, at := range a.last {
		if !at.Before(since) {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (a *memActivity) Prune(_ context.Context, before time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for u, at := range a.last {
		if at.Before(before) {
			delete(a.last, u)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
