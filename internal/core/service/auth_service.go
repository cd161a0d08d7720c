package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login, logout and principal resolution.
type AuthService struct {
	repo      ports.AccountRepository
	revoker   ports.TokenRevoker
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService returns an AuthService. revoker may be nil, in which case
// Logout is a no-op.
func NewAuthService(repo ports.AccountRepository, revoker ports.TokenRevoker, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ ports.AuthService       = (*AuthService)(nil)
	_ ports.PrincipalResolver = (*AuthService)(nil)
)

// Register creates a CLIENT or CARRIER account with its profile and returns a
// token for it. Admin accounts are only created from the CLI.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.Account, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if len(in.Password) < minPasswordLength {
		return "", nil, domain.ErrWeakPassword
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok || role == domain.RoleAdmin {
		return "", nil, domain.ErrInvalidRole
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Surname) == "" {
		return "", nil, domain.ErrProfileRequired
	}

	account, err := s.newAccount(email, in.Password, role)
	if err != nil {
		return "", nil, err
	}

	var (
		client  *domain.Client
		carrier *domain.Carrier
	)
	switch role {
	case domain.RoleClient:
		client = &domain.Client{
			Name:    strings.TrimSpace(in.Name),
			Surname: strings.TrimSpace(in.Surname),
			Phone:   in.Phone,
			Address: in.Address,
			City:    in.City,
		}
	case domain.RoleCarrier:
		carrier = &domain.Carrier{
			Name:      strings.TrimSpace(in.Name),
			Surname:   strings.TrimSpace(in.Surname),
			Phone:     in.Phone,
			Location:  in.Location,
			Available: true,
		}
	}

	if err := s.repo.CreateAccount(ctx, account, client, carrier); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// CreateAdmin inserts an ADMIN account without a profile.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}
	account, err := s.newAccount(email, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateAccount(ctx, account, nil, nil); err != nil {
		return nil, err
	}
	return account, nil
}

// Login checks the credentials and returns a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindAccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Logout denies the token id until the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil || tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, ttl)
}

// Resolve loads the account behind verified claims and links its profile.
// A role mismatch between token and account is treated as forbidden.
func (s *AuthService) Resolve(ctx context.Context, email string, role domain.Role) (domain.Principal, error) {
	account, err := s.repo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.Principal{}, err
	}
	if account.Role != role {
		return domain.Principal{}, fmt.Errorf("%w: token role %s does not match account", domain.ErrForbidden, role)
	}

	p := domain.Principal{AccountID: account.ID, Email: account.Email, Role: account.Role}
	switch account.Role {
	case domain.RoleClient:
		client, err := s.repo.FindClientByAccount(ctx, account.ID)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("resolve client profile: %w", err)
		}
		p.ClientID = client.ID
	case domain.RoleCarrier:
		carrier, err := s.repo.FindCarrierByAccount(ctx, account.ID)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("resolve carrier profile: %w", err)
		}
		p.CarrierID = carrier.ID
	}
	return p, nil
}

func (s *AuthService) newAccount(email, password string, role domain.Role) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}, nil
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  account.Email,
		"role": string(account.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
		"jti":  uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
