package ports

import (
	"context"

	"github.com/edulearn/learner-gateway/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password, userType string) (string, *domain.AuthenticatedUser, error)
	Initialized() bool
}
