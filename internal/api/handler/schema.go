package handler

import (
	"github.com/edulearn/learner-gateway/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// listResponse wraps every list payload.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	UserType string `json:"user_type" validate:"omitempty,oneof=student staff"`
}

type loginResponse struct {
	Token string                    `json:"token"`
	User  *domain.AuthenticatedUser `json:"user"`
}

// --- Streak ---

type streakLoginResponse struct {
	Outcome domain.StreakOutcome `json:"outcome"`
	Streak  *domain.StreakState  `json:"streak"`
	Notice  *domain.Notice       `json:"notice,omitempty"`
}

type streakStatusResponse struct {
	Streak       *domain.StreakState   `json:"streak"`
	Week         []domain.StreakRecord `json:"week"`
	Stats        domain.StreakStats    `json:"stats"`
	VisitedToday bool                  `json:"visited_today"`
	Reminder     *domain.Notice        `json:"reminder,omitempty"`
}

type activityResponse struct {
	Forwarded bool `json:"forwarded"`
}

type noticesQuery struct {
	Limit int64 `query:"limit" validate:"omitempty,min=1,max=100"`
}

// --- Catalog ---

type coursesQuery struct {
	Category string `query:"category"`
	Level    string `query:"level"`
	Search   string `query:"search"    validate:"max=200"`
	Featured string `query:"featured"  validate:"omitempty,oneof=true false"`
	Page     int    `query:"page"      validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

type applyRequest struct {
	CourseID int    `json:"course_id" validate:"required,gt=0"`
	Message  string `json:"message"   validate:"max=1000"`
}

type reviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type profileRequest struct {
	Email       string   `json:"email"        validate:"omitempty,email"`
	FirstName   string   `json:"first_name"   validate:"max=100"`
	LastName    string   `json:"last_name"    validate:"max=100"`
	PhoneNumber string   `json:"phone_number" validate:"max=30"`
	Location    string   `json:"location"     validate:"max=100"`
	Bio         string   `json:"bio"          validate:"max=2000"`
	Skills      []string `json:"skills"       validate:"max=50,dive,max=50"`
	WebsiteURL  string   `json:"website_url"  validate:"omitempty,url"`
	GithubURL   string   `json:"github_url"   validate:"omitempty,url"`
	LinkedinURL string   `json:"linkedin_url" validate:"omitempty,url"`
	TwitterURL  string   `json:"twitter_url"  validate:"omitempty,url"`
}

type replyRequest struct {
	RelatedItemID string `json:"related_item_id" validate:"required"`
	CourseID      int    `json:"course_id"       validate:"required,gt=0"`
	Message       string `json:"message"         validate:"required,max=2000"`
}
