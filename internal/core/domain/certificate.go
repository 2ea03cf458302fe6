package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrRenderFailed = errors.New("certificate rendering failed")
var ErrCertificateNotFound = errors.New("certificate not found")
var ErrCertificateNotEarned = errors.New("course not completed")

// IssueDateLayout formats the issue date printed on certificates.
const IssueDateLayout = "January 2, 2006"

// CertificateData is everything printed on a certificate.
type CertificateData struct {
	StudentName    string `json:"student_name"`
	CourseTitle    string `json:"course_title"`
	InstructorName string `json:"instructor_name"`
	IssueDate      string `json:"issue_date"`
	CourseID       string `json:"course_id"`
	Category       string `json:"category,omitempty"`
}

// Instructor is the course owner as the backend exposes it.
type Instructor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CertificateCourse is a course listed under the student's certificates.
type CertificateCourse struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Instructor       Instructor `json:"instructor"`
	Thumbnail        *string    `json:"thumbnail"`
	Level            string     `json:"level"`
	Category         string     `json:"category"`
	Progress         float64    `json:"progress"`
	Completed        bool       `json:"completed"`
	TotalLessons     int        `json:"total_lessons"`
	CompletedLessons int        `json:"completed_lessons"`
}

// CertificateIssue is the audit entry written for every rendered certificate.
type CertificateIssue struct {
	Username  string    `bson:"username"`
	CourseID  int       `bson:"course_id"`
	Title     string    `bson:"title"`
	IssueDate string    `bson:"issue_date"`
	SizeBytes int       `bson:"size_bytes"`
	IssuedAt  time.Time `bson:"issued_at"`
}

// CertificateFileName is the download name for a course certificate.
func CertificateFileName(courseTitle string) string {
	return strings.Join(strings.Fields(courseTitle), "_") + "_Certificate.pdf"
}
