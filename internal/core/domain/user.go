package domain

import "errors"

const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)

// AllowedRole is the audience a guarded route accepts.
type AllowedRole string

const (
	AllowStudent AllowedRole = RoleStudent
	AllowStaff   AllowedRole = RoleStaff
	AllowAll     AllowedRole = "all"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthenticated = errors.New("authentication required")
var ErrForbidden = errors.New("access forbidden")

// AuthenticatedUser is the identity issued by the backend login. The gateway
// never validates Token itself; it only forwards it upstream.
type AuthenticatedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	StaffID  string `json:"staff_id,omitempty"`
	Token    string `json:"-"`
}

// IsStudent reports whether the user signed in as a student.
func (u *AuthenticatedUser) IsStudent() bool {
	return u != nil && u.Role == RoleStudent
}

// IsStaff reports whether the user signed in as an instructor.
func (u *AuthenticatedUser) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}
