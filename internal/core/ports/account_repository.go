package ports

import (
	"context"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// AccountRecord is an account with the contact fields of its profile, if any.
type AccountRecord struct {
	Account   domain.Account
	ProfileID int64
	Name      string
	Surname   string
	Phone     string
	Address   string // client address or carrier location
}

// AccountRepository defines persistence for accounts and their profiles.
type AccountRepository interface {
	// CreateAccount inserts the account and, when given, its client or carrier
	// profile atomically. It returns domain.ErrEmailTaken on a duplicate email.
	CreateAccount(ctx context.Context, account *domain.Account, client *domain.Client, carrier *domain.Carrier) error
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindClientByAccount(ctx context.Context, accountID int64) (*domain.Client, error)
	FindCarrierByAccount(ctx context.Context, accountID int64) (*domain.Carrier, error)
	FindClient(ctx context.Context, id int64) (*domain.Client, error)
	FindCarrier(ctx context.Context, id int64) (*domain.Carrier, error)
	ListAvailableCarriers(ctx context.Context) ([]domain.Carrier, error)
	UpdateClient(ctx context.Context, c *domain.Client) error
	UpdateCarrier(ctx context.Context, c *domain.Carrier) error
	SetCarrierAvailability(ctx context.Context, carrierID int64, available bool) error
	ListAccounts(ctx context.Context) ([]AccountRecord, error)
	CountAccountsByRole(ctx context.Context) (map[domain.Role]int64, error)
}
