package ports

import (
	"context"
	"time"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// RegisterInput carries a self-registration. Location only applies to carriers,
// Address and City only to clients.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
	Name     string
	Surname  string
	Phone    string
	Address  string
	City     string
	Location string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// PrincipalResolver maps verified token claims to the caller's account and profile.
type PrincipalResolver interface {
	Resolve(ctx context.Context, email string, role domain.Role) (domain.Principal, error)
}
