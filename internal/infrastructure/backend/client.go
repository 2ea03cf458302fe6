// Package backend is the HTTP client of the external EduLearn REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/api/metrics"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.Backend over JSON/HTTP. Responses use the
// {success, message, data} envelope.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client. A default timeout is applied when none is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

var _ ports.Backend = (*Client)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginResponse struct {
	Data struct {
		ID       json.RawMessage `json:"id"`
		Email    string          `json:"email"`
		Username string          `json:"username"`
		UserType string          `json:"user_type"`
		StaffID  json.RawMessage `json:"staff_id"`
	} `json:"data"`
	Tokens struct {
		AccessToken string `json:"access_token"`
	} `json:"tokens"`
}

func (c *Client) Login(ctx context.Context, email, password, userType string) (*domain.AuthenticatedUser, error) {
	body := map[string]string{"email": email, "password": password, "user_type": userType}

	raw, err := c.send(ctx, "login", http.MethodPost, "/auth/login/", "", body)
	if err != nil {
		var ue *domain.UpstreamError
		if errors.As(err, &ue) && (ue.Status == http.StatusBadRequest || ue.Status == http.StatusUnauthorized) {
			ue.Kind = domain.ErrInvalidCredentials
		}
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, decodeError("login", err)
	}
	username := resp.Data.Username
	if username == "" {
		username = resp.Data.Email
	}
	return &domain.AuthenticatedUser{
		Username: username,
		Email:    resp.Data.Email,
		Role:     resp.Data.UserType,
		StaffID:  scalar(resp.Data.StaffID),
		Token:    resp.Tokens.AccessToken,
	}, nil
}

func (c *Client) ListCourses(ctx context.Context, q domain.CourseQuery) (*domain.CoursePage, error) {
	raw, err := c.send(ctx, "list_courses", http.MethodGet, "/public/courses/?"+courseParams(q).Encode(), "", nil)
	if err != nil {
		return nil, err
	}
	var page domain.CoursePage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, decodeError("list_courses", err)
	}
	if page.Courses == nil {
		page.Courses = []domain.CoursePreview{}
	}
	return &page, nil
}

func (c *Client) GetCourse(ctx context.Context, token string, courseID int) (json.RawMessage, error) {
	raw, err := c.send(ctx, "get_course", http.MethodGet, "/courses/"+strconv.Itoa(courseID)+"/", token, nil)
	if err != nil {
		return nil, err
	}
	return dataOf[json.RawMessage]("get_course", raw)
}

func (c *Client) ListApplications(ctx context.Context, token string) ([]domain.CourseApplication, error) {
	raw, err := c.send(ctx, "list_applications", http.MethodGet, "/applications/", token, nil)
	if err != nil {
		return nil, err
	}
	apps, err := dataOf[[]domain.CourseApplication]("list_applications", raw)
	if apps == nil && err == nil {
		apps = []domain.CourseApplication{}
	}
	return apps, err
}

func (c *Client) CreateApplication(ctx context.Context, token string, courseID int, message string) (*domain.CourseApplication, error) {
	body := map[string]any{"course_id": courseID, "message": message}
	raw, err := c.send(ctx, "create_application", http.MethodPost, "/applications/", token, body)
	if err != nil {
		return nil, err
	}
	return dataOf[*domain.CourseApplication]("create_application", raw)
}

func (c *Client) CancelApplication(ctx context.Context, token, applicationID string) error {
	_, err := c.send(ctx, "cancel_application", http.MethodDelete, "/applications/"+url.PathEscape(applicationID)+"/", token, nil)
	return err
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, token, applicationID string, status domain.ApplicationStatus) (*domain.CourseApplication, error) {
	body := map[string]string{"status": string(status)}
	raw, err := c.send(ctx, "update_application", http.MethodPut, "/applications/"+url.PathEscape(applicationID)+"/", token, body)
	if err != nil {
		return nil, err
	}
	return dataOf[*domain.CourseApplication]("update_application", raw)
}

func (c *Client) GetProfile(ctx context.Context, token string) (*domain.StudentProfile, error) {
	raw, err := c.send(ctx, "get_profile", http.MethodGet, "/profile/student/", token, nil)
	if err != nil {
		return nil, err
	}
	return dataOf[*domain.StudentProfile]("get_profile", raw)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, profile domain.StudentProfile) (*domain.StudentProfile, error) {
	raw, err := c.send(ctx, "update_profile", http.MethodPut, "/profile/student/", token, profile)
	if err != nil {
		return nil, err
	}
	return dataOf[*domain.StudentProfile]("update_profile", raw)
}

// UploadProfilePicture posts content as the multipart field profile_picture.
func (c *Client) UploadProfilePicture(ctx context.Context, token, filename string, content io.Reader) (*domain.StudentProfile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profile_picture", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	raw, err := c.do(ctx, "upload_picture", http.MethodPost, "/profile/student/profile-picture/", token, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	return dataOf[*domain.StudentProfile]("upload_picture", raw)
}

func (c *Client) ListCertificates(ctx context.Context, token string) ([]domain.CertificateCourse, error) {
	raw, err := c.send(ctx, "list_certificates", http.MethodGet, "/my-certificates/", token, nil)
	if err != nil {
		return nil, err
	}
	courses, err := dataOf[[]domain.CertificateCourse]("list_certificates", raw)
	if courses == nil && err == nil {
		courses = []domain.CertificateCourse{}
	}
	return courses, err
}

func (c *Client) ListNotifications(ctx context.Context, token string) ([]domain.Notification, error) {
	raw, err := c.send(ctx, "list_notifications", http.MethodGet, "/notifications/", token, nil)
	if err != nil {
		return nil, err
	}
	items, err := dataOf[[]domain.Notification]("list_notifications", raw)
	if items == nil && err == nil {
		items = []domain.Notification{}
	}
	return items, err
}

func (c *Client) ReplyNotification(ctx context.Context, token string, reply domain.NotificationReply) error {
	_, err := c.send(ctx, "reply_notification", http.MethodPost, "/notifications/reply/", token, reply)
	return err
}

// Ping checks that the backend answers. Used by readiness and start-up probes.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.send(ctx, "ping", http.MethodGet, "/public/courses/?page=1&page_size=1", "", nil)
	return err
}

// send encodes body as JSON (when non-nil) and performs the request.
func (c *Client) send(ctx context.Context, endpoint, method, path, token string, body any) ([]byte, error) {
	var (
		r           io.Reader
		contentType string
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		r = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, endpoint, method, path, token, contentType, r)
}

func (c *Client) do(ctx context.Context, endpoint, method, path, token, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("backend request failed")
		return nil, fmt.Errorf("%s: %w: %v", endpoint, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, statusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %v", endpoint, domain.ErrUpstream, err)
	}

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, upstreamError(resp.StatusCode, raw)
	}
	return raw, nil
}

func upstreamError(status int, raw []byte) error {
	msg := ""
	var env struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil {
		switch {
		case env.Message != "":
			msg = env.Message
		case env.Detail != "":
			msg = env.Detail
		case env.Error != "":
			msg = env.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.UpstreamError{Status: status, Message: msg}
}

// dataOf decodes the data member of the response envelope.
func dataOf[T any](endpoint string, raw []byte) (T, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, decodeError(endpoint, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero, decodeError(endpoint, err)
	}
	return v, nil
}

func decodeError(endpoint string, err error) error {
	return fmt.Errorf("%s: %w: decode response: %v", endpoint, domain.ErrUpstream, err)
}

func courseParams(q domain.CourseQuery) url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Level != "" {
		v.Set("level", q.Level)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// scalar renders a JSON string or number as plain text.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
