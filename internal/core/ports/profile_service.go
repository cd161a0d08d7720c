package ports

import (
	"context"
	"time"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// ClientDashboard is the client's profile with its mission counters.
type ClientDashboard struct {
	Email             string
	Profile           domain.Client
	CompletedMissions int64
	ActiveMissions    int64
	Welcome           string
}

// CarrierDashboard is the carrier's profile with its mission counters.
type CarrierDashboard struct {
	Email             string
	Profile           domain.Carrier
	CompletedMissions int64
	ActiveMissions    int64
	Welcome           string
}

// AdminProfile describes an administrator account.
type AdminProfile struct {
	AccountID   int64
	Email       string
	Role        domain.Role
	CreatedAt   time.Time
	Permissions []string
}

// UpdateProfileInput holds profile changes; empty fields are left unchanged.
type UpdateProfileInput struct {
	Name     string
	Surname  string
	Phone    string
	Address  string
	City     string
	Location string
}

type ProfileService interface {
	ClientDashboard(ctx context.Context, p domain.Principal) (*ClientDashboard, error)
	UpdateClient(ctx context.Context, p domain.Principal, in UpdateProfileInput) (*domain.Client, error)
	CarrierDashboard(ctx context.Context, p domain.Principal) (*CarrierDashboard, error)
	UpdateCarrier(ctx context.Context, p domain.Principal, in UpdateProfileInput) (*domain.Carrier, error)
	SetAvailability(ctx context.Context, p domain.Principal, available bool) (*domain.Carrier, error)
	AdminProfile(ctx context.Context, p domain.Principal) (*AdminProfile, error)
}
