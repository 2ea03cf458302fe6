package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// AuthService signs users in through the backend and issues gateway sessions.
type AuthService struct {
	backend     ports.Backend
	jwtSecret   string
	tokenTTL    time.Duration
	log         zerolog.Logger
	initialized atomic.Bool
	now         func() time.Time
}

func NewAuthService(backend ports.Backend, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{backend: backend, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log, now: time.Now}
}

// Login exchanges credentials with the backend and returns a signed gateway
// session carrying the upstream token.
func (s *AuthService) Login(ctx context.Context, email, password, userType string) (string, *domain.AuthenticatedUser, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if userType == "" {
		userType = domain.RoleStudent
	}
	if userType != domain.RoleStudent && userType != domain.RoleStaff {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.backend.Login(ctx, email, password, userType)
	if err != nil {
		return "", nil, err
	}
	if user.Token == "" {
		return "", nil, fmt.Errorf("login: %w: empty access token", domain.ErrUpstream)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user signed in")
	return token, user, nil
}

// Initialized reports whether startup session restoration has completed.
// Guarded routes make no decision before that.
func (s *AuthService) Initialized() bool {
	return s.initialized.Load()
}

// MarkInitialized flips Initialized to true. It is idempotent.
func (s *AuthService) MarkInitialized() {
	if s.initialized.CompareAndSwap(false, true) {
		s.log.Info().Msg("auth initialized")
	}
}

func (s *AuthService) generateToken(user *domain.AuthenticatedUser) (string, error) {
	claims := jwt.MapClaims{
		"username":       user.Username,
		"email":          user.Email,
		"role":           user.Role,
		"staff_id":       user.StaffID,
		"upstream_token": user.Token,
		"exp":            s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
