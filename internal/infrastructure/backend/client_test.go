package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/", Timeout: time.Second}, zerolog.Nop())
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "ben@example.com" || body["user_type"] != "staff" {
			t.Fatalf("unexpected body %+v", body)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":4,"email":"ben@example.com","username":"ben","user_type":"staff","staff_id":17},"tokens":{"access_token":"acc-1"}}`)
	})

	user, err := c.Login(context.Background(), "ben@example.com", "pw", "staff")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := domain.AuthenticatedUser{Username: "ben", Email: "ben@example.com", Role: "staff", StaffID: "17", Token: "acc-1"}
	if *user != want {
		t.Fatalf("expected %+v, got %+v", want, *user)
	}
}

func TestClient_Login_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Invalid email or password"}`)
	})

	_, err := c.Login(context.Background(), "a@b.c", "bad", "student")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) || ue.Message != "Invalid email or password" {
		t.Fatalf("expected backend message to be kept, got %v", err)
	}
}

func TestClient_ListCourses_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category") != "Data" || q.Get("featured") != "true" || q.Get("page") != "2" || q.Has("level") {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "" {
			t.Fatalf("public catalog must not carry a token")
		}
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"title":"SQL"}],"pagination":{"total_pages":3,"current_page":2,"has_next":true},"filters":{"categories":["Data"],"levels":["beginner"]}}`)
	})

	featured := true
	page, err := c.ListCourses(context.Background(), domain.CourseQuery{Category: "Data", Featured: &featured, Page: 2})
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(page.Courses) != 1 || page.Courses[0].Title != "SQL" {
		t.Fatalf("unexpected courses %+v", page.Courses)
	}
	if page.Pagination.TotalPages != 3 || !page.Pagination.HasNext {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
	if len(page.Filters.Categories) != 1 {
		t.Fatalf("unexpected filters %+v", page.Filters)
	}
}

func TestClient_ForwardsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected authorization %q", got)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":3,"title":"Go Basics","instructor":{"id":"i1","name":"Grace"},"completed":true}]}`)
	})

	courses, err := c.ListCertificates(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("ListCertificates: %v", err)
	}
	if len(courses) != 1 || !courses[0].Completed || courses[0].Instructor.Name != "Grace" {
		t.Fatalf("unexpected courses %+v", courses)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthenticated},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusInternalServerError, domain.ErrUpstream},
	}

	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, `{"success":false,"message":"nope"}`)
		})
		_, err := c.GetProfile(context.Background(), "t")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var ue *domain.UpstreamError
		if !errors.As(err, &ue) || ue.Status != tc.status || ue.Message != "nope" {
			t.Fatalf("status %d: unexpected error %v", tc.status, err)
		}
	}
}

func TestClient_ErrorWithoutMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.ListNotifications(context.Background(), "t")
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) || ue.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("expected status text fallback, got %v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zerolog.Nop())

	if _, err := c.ListApplications(context.Background(), "t"); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_UploadProfilePicture(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/profile/student/profile-picture/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("profile_picture")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "me.png" || string(content) != "PNGDATA" {
			t.Fatalf("unexpected upload %s %q", header.Filename, content)
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","data":{"profile_picture_url":"https://cdn/me.png"}}`)
	})

	profile, err := c.UploadProfilePicture(context.Background(), "t", "me.png", strings.NewReader("PNGDATA"))
	if err != nil {
		t.Fatalf("UploadProfilePicture: %v", err)
	}
	if profile.ProfilePictureURL != "https://cdn/me.png" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestClient_ApplicationMutations(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["status"] != "approved" {
				t.Fatalf("unexpected body %+v", body)
			}
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":"a1","status":"approved"}}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	app, err := c.UpdateApplicationStatus(ctx, "t", "a1", domain.ApplicationApproved)
	if err != nil || app.Status != domain.ApplicationApproved {
		t.Fatalf("UpdateApplicationStatus: %+v %v", app, err)
	}
	if err := c.CancelApplication(ctx, "t", "a1"); err != nil {
		t.Fatalf("CancelApplication: %v", err)
	}

	if len(seen) != 2 || seen[0] != "PUT /api/applications/a1/" || seen[1] != "DELETE /api/applications/a1/" {
		t.Fatalf("unexpected requests %v", seen)
	}
}
