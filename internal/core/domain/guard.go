package domain

// GuardState is where a guarded route stands for the current request.
type GuardState string

const (
	GuardInitializing GuardState = "initializing"
	GuardAuthorized   GuardState = "authorized"
	GuardRedirecting  GuardState = "redirecting"
)

const (
	DefaultLoginPath   = "/login"
	StudentLandingPath = "/dashboard/candidate"
	StaffLandingPath   = "/dashboard/instructor"
)

// GuardDecision is the outcome of one guard evaluation.
type GuardDecision struct {
	State      GuardState
	RedirectTo string
}

// Decide evaluates access to a route restricted to allowed. No decision is
// made until the auth collaborator reports it has restored its session.
func Decide(user *AuthenticatedUser, initialized bool, allowed AllowedRole, loginPath string) GuardDecision {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if !initialized {
		return GuardDecision{State: GuardInitializing}
	}
	if user == nil || user.Token == "" {
		return GuardDecision{State: GuardRedirecting, RedirectTo: loginPath}
	}
	if allowed == AllowAll || user.Role == string(allowed) {
		return GuardDecision{State: GuardAuthorized}
	}
	return GuardDecision{State: GuardRedirecting, RedirectTo: LandingPath(user.Role, loginPath)}
}

// LandingPath is the default area of a role.
func LandingPath(role, loginPath string) string {
	switch role {
	case RoleStudent:
		return StudentLandingPath
	case RoleStaff:
		return StaffLandingPath
	default:
		return loginPath
	}
}
