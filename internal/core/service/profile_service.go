package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const (
	clientWelcome  = "Welcome to your client dashboard"
	carrierWelcome = "Welcome to your carrier dashboard"
)

// AdminPermissions are granted to every ADMIN account.
var AdminPermissions = []string{"VIEW_ACCOUNTS", "VIEW_TRANSACTIONS", "VIEW_STATISTICS"}

var activeStatuses = []domain.MissionStatus{domain.StatusAccepted, domain.StatusInProgress}

type ProfileService struct {
	accounts ports.AccountRepository
	missions ports.MissionRepository
}

func NewProfileService(accounts ports.AccountRepository, missions ports.MissionRepository) *ProfileService {
	return &ProfileService{accounts: accounts, missions: missions}
}

var _ ports.ProfileService = (*ProfileService)(nil)

func (s *ProfileService) ClientDashboard(ctx context.Context, p domain.Principal) (*ports.ClientDashboard, error) {
	client, err := s.client(ctx, p)
	if err != nil {
		return nil, err
	}
	completed, err := s.missions.CountMissionsByClient(ctx, client.ID, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	active, err := s.missions.CountMissionsByClient(ctx, client.ID, activeStatuses...)
	if err != nil {
		return nil, err
	}
	return &ports.ClientDashboard{
		Email:             p.Email,
		Profile:           *client,
		CompletedMissions: completed,
		ActiveMissions:    active,
		Welcome:           clientWelcome,
	}, nil
}

func (s *ProfileService) UpdateClient(ctx context.Context, p domain.Principal, in ports.UpdateProfileInput) (*domain.Client, error) {
	client, err := s.client(ctx, p)
	if err != nil {
		return nil, err
	}
	setIfPresent(&client.Name, in.Name)
	setIfPresent(&client.Surname, in.Surname)
	setIfPresent(&client.Phone, in.Phone)
	setIfPresent(&client.Address, in.Address)
	setIfPresent(&client.City, in.City)

	if err := s.accounts.UpdateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("update client profile: %w", err)
	}
	return client, nil
}

func (s *ProfileService) CarrierDashboard(ctx context.Context, p domain.Principal) (*ports.CarrierDashboard, error) {
	carrier, err := s.carrier(ctx, p)
	if err != nil {
		return nil, err
	}
	completed, err := s.missions.CountMissionsByCarrier(ctx, carrier.ID, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	active, err := s.missions.CountMissionsByCarrier(ctx, carrier.ID, activeStatuses...)
	if err != nil {
		return nil, err
	}
	return &ports.CarrierDashboard{
		Email:             p.Email,
		Profile:           *carrier,
		CompletedMissions: completed,
		ActiveMissions:    active,
		Welcome:           carrierWelcome,
	}, nil
}

func (s *ProfileService) UpdateCarrier(ctx context.Context, p domain.Principal, in ports.UpdateProfileInput) (*domain.Carrier, error) {
	carrier, err := s.carrier(ctx, p)
	if err != nil {
		return nil, err
	}
	setIfPresent(&carrier.Name, in.Name)
	setIfPresent(&carrier.Surname, in.Surname)
	setIfPresent(&carrier.Phone, in.Phone)
	setIfPresent(&carrier.Location, in.Location)

	if err := s.accounts.UpdateCarrier(ctx, carrier); err != nil {
		return nil, fmt.Errorf("update carrier profile: %w", err)
	}
	return carrier, nil
}

// SetAvailability toggles whether clients can open new missions with the carrier.
// Existing missions are unaffected.
func (s *ProfileService) SetAvailability(ctx context.Context, p domain.Principal, available bool) (*domain.Carrier, error) {
	carrier, err := s.carrier(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetCarrierAvailability(ctx, carrier.ID, available); err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	carrier.Available = available
	return carrier, nil
}

func (s *ProfileService) AdminProfile(ctx context.Context, p domain.Principal) (*ports.AdminProfile, error) {
	if p.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	account, err := s.accounts.FindAccountByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	return &ports.AdminProfile{
		AccountID:   account.ID,
		Email:       account.Email,
		Role:        account.Role,
		CreatedAt:   account.CreatedAt,
		Permissions: append([]string(nil), AdminPermissions...),
	}, nil
}

func (s *ProfileService) client(ctx context.Context, p domain.Principal) (*domain.Client, error) {
	if p.Role != domain.RoleClient || p.ClientID == 0 {
		return nil, fmt.Errorf("%w: client profile required", domain.ErrForbidden)
	}
	return s.accounts.FindClient(ctx, p.ClientID)
}

func (s *ProfileService) carrier(ctx context.Context, p domain.Principal) (*domain.Carrier, error) {
	if p.Role != domain.RoleCarrier || p.CarrierID == 0 {
		return nil, fmt.Errorf("%w: carrier profile required", domain.ErrForbidden)
	}
	return s.accounts.FindCarrier(ctx, p.CarrierID)
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
