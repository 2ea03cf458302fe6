package domain

import "errors"

var ErrNotFound = errors.New("resource not found")
var ErrUpstream = errors.New("backend request failed")
var ErrInvalidStatus = errors.New("invalid application status")
var ErrEmptyMessage = errors.New("message is empty")

// CoursePreview is one entry of the public course catalog.
type CoursePreview struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	Description      string     `json:"description"`
	Instructor       Instructor `json:"instructor"`
	Thumbnail        *string    `json:"thumbnail"`
	Price            float64    `json:"price"`
	Level            string     `json:"level"`
	Category         string     `json:"category"`
	Language         string     `json:"language"`
	Rating           float64    `json:"rating"`
	RatingCount      int        `json:"rating_count"`
	IsFeatured       bool       `json:"is_featured"`
	TotalStudents    int        `json:"total_students"`
	TotalLessons     int        `json:"total_lessons"`
	TotalDuration    string     `json:"total_duration"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// Pagination mirrors the catalog paging block.
type Pagination struct {
	TotalPages   int  `json:"total_pages"`
	TotalCourses int  `json:"total_courses"`
	CurrentPage  int  `json:"current_page"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// CatalogFilters lists the facet values the catalog can be filtered by.
type CatalogFilters struct {
	Categories []string `json:"categories"`
	Levels     []string `json:"levels"`
}

// CoursePage is one page of the public catalog.
type CoursePage struct {
	Courses    []CoursePreview `json:"data"`
	Pagination Pagination      `json:"pagination"`
	Filters    CatalogFilters  `json:"filters"`
}

// CourseQuery filters the public catalog. Zero values are omitted.
type CourseQuery struct {
	Category string
	Level    string
	Search   string
	Featured *bool
	Page     int
	PageSize int
}

// ApplicationStatus is the review state of a course application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Reviewable reports whether an instructor may set the application to s.
func (s ApplicationStatus) Reviewable() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// ApplicationCourse is the course summary embedded in an application.
type ApplicationCourse struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

// ApplicationStudent is the applicant, visible to instructors only.
type ApplicationStudent struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseApplication is a student's request to join a course.
type CourseApplication struct {
	ID        string              `json:"id"`
	Course    ApplicationCourse   `json:"course"`
	Student   *ApplicationStudent `json:"student,omitempty"`
	Status    ApplicationStatus   `json:"status"`
	Message   *string             `json:"message,omitempty"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

// StudentProfile is the editable student profile.
type StudentProfile struct {
	Email             string   `json:"email"`
	FirstName         string   `json:"first_name,omitempty"`
	LastName          string   `json:"last_name,omitempty"`
	PhoneNumber       string   `json:"phone_number,omitempty"`
	Location          string   `json:"location,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Skills            []string `json:"skills"`
	WebsiteURL        string   `json:"website_url,omitempty"`
	GithubURL         string   `json:"github_url,omitempty"`
	LinkedinURL       string   `json:"linkedin_url,omitempty"`
	TwitterURL        string   `json:"twitter_url,omitempty"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
}

// Notification is an entry of the backend notification feed.
type Notification struct {
	ID              int     `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	IsRead          bool    `json:"is_read"`
	CreatedAt       string  `json:"created_at"`
	RelatedItemID   *string `json:"related_item_id"`
	RelatedItemType *string `json:"related_item_type"`
	CourseID        *int    `json:"course_id"`
	CourseTitle     *string `json:"course_title"`
	SenderName      string  `json:"sender_name"`
	SenderImage     *string `json:"sender_image"`
}

// NotificationReply answers a comment notification on a course.
type NotificationReply struct {
	RelatedItemID string `json:"related_item_id"`
	CourseID      int    `json:"course_id"`
	Message       string `json:"message"`
}
