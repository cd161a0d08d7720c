package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const (
	accountColumns = ` id, email, password_hash, role, created_at`
	clientColumns  = ` id, account_id, name, surname, phone, address, city`
	carrierColumns = ` id, account_id, name, surname, phone, location, average_rating, available`
)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) CreateAccount(ctx context.Context, account *domain.Account, client *domain.Client, carrier *domain.Carrier) error {
	tx, err := r.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO account (email, password_hash, role, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		account.Email, account.PasswordHash, account.Role, account.CreatedAt.UTC(),
	).Scan(&account.ID)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	if client != nil {
		client.AccountID = account.ID
		err = tx.QueryRowxContext(ctx,
			tx.Rebind(`INSERT INTO client (account_id, name, surname, phone, address, city) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			client.AccountID, client.Name, client.Surname, client.Phone, client.Address, client.City,
		).Scan(&client.ID)
		if err != nil {
			return fmt.Errorf("insert client: %w", err)
		}
	}
	if carrier != nil {
		carrier.AccountID = account.ID
		err = tx.QueryRowxContext(ctx,
			tx.Rebind(`INSERT INTO carrier (account_id, name, surname, phone, location, average_rating, available) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			carrier.AccountID, carrier.Name, carrier.Surname, carrier.Phone, carrier.Location, carrier.AverageRating, carrier.Available,
		).Scan(&carrier.ID)
		if err != nil {
			return fmt.Errorf("insert carrier: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	query := r.store.db.Rebind("SELECT" + accountColumns + " FROM account WHERE email = ?")
	if err := r.store.db.GetContext(ctx, &a, query, email); err != nil {
		return nil, notFound(err, domain.ErrAccountNotFound)
	}
	return &a, nil
}

func (r *AccountRepository) FindClientByAccount(ctx context.Context, accountID int64) (*domain.Client, error) {
	return findClient(ctx, r.store.db, r.store.db.Rebind("SELECT"+clientColumns+" FROM client WHERE account_id = ?"), accountID)
}

func (r *AccountRepository) FindCarrierByAccount(ctx context.Context, accountID int64) (*domain.Carrier, error) {
	return findCarrier(ctx, r.store.db, r.store.db.Rebind("SELECT"+carrierColumns+" FROM carrier WHERE account_id = ?"), accountID)
}

func (r *AccountRepository) FindClient(ctx context.Context, id int64) (*domain.Client, error) {
	return findClient(ctx, r.store.db, r.store.db.Rebind("SELECT"+clientColumns+" FROM client WHERE id = ?"), id)
}

func (r *AccountRepository) FindCarrier(ctx context.Context, id int64) (*domain.Carrier, error) {
	return findCarrier(ctx, r.store.db, r.store.db.Rebind("SELECT"+carrierColumns+" FROM carrier WHERE id = ?"), id)
}

func (r *AccountRepository) ListAvailableCarriers(ctx context.Context) ([]domain.Carrier, error) {
	carriers := []domain.Carrier{}
	query := r.store.db.Rebind("SELECT" + carrierColumns + " FROM carrier WHERE available = ? ORDER BY average_rating DESC, id")
	if err := r.store.db.SelectContext(ctx, &carriers, query, true); err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	return carriers, nil
}

func (r *AccountRepository) UpdateClient(ctx context.Context, c *domain.Client) error {
	query := r.store.db.Rebind(`UPDATE client SET name = ?, surname = ?, phone = ?, address = ?, city = ? WHERE id = ?`)
	return r.execOne(ctx, query, domain.ErrClientNotFound, c.Name, c.Surname, c.Phone, c.Address, c.City, c.ID)
}

func (r *AccountRepository) UpdateCarrier(ctx context.Context, c *domain.Carrier) error {
	query := r.store.db.Rebind(`UPDATE carrier SET name = ?, surname = ?, phone = ?, location = ?, available = ? WHERE id = ?`)
	return r.execOne(ctx, query, domain.ErrCarrierNotFound, c.Name, c.Surname, c.Phone, c.Location, c.Available, c.ID)
}

func (r *AccountRepository) SetCarrierAvailability(ctx context.Context, carrierID int64, available bool) error {
	query := r.store.db.Rebind(`UPDATE carrier SET available = ? WHERE id = ?`)
	return r.execOne(ctx, query, domain.ErrCarrierNotFound, available, carrierID)
}

// execOne runs an update that must touch exactly one row.
func (r *AccountRepository) execOne(ctx context.Context, query string, missing error, args ...any) error {
	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return missing
	}
	return nil
}

type accountRow struct {
	domain.Account
	ProfileID int64  `db:"profile_id"`
	Name      string `db:"name"`
	Surname   string `db:"surname"`
	Phone     string `db:"phone"`
	Address   string `db:"address"`
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]ports.AccountRecord, error) {
	var rows []accountRow
	err := r.store.db.SelectContext(ctx, &rows, `
SELECT a.id, a.email, a.password_hash, a.role, a.created_at,
       COALESCE(c.id, k.id, 0) AS profile_id,
       COALESCE(c.name, k.name, '') AS name,
       COALESCE(c.surname, k.surname, '') AS surname,
       COALESCE(c.phone, k.phone, '') AS phone,
       COALESCE(c.address, k.location, '') AS address
FROM account a
LEFT JOIN client c ON c.account_id = a.id
LEFT JOIN carrier k ON k.account_id = a.id
ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]ports.AccountRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.AccountRecord{
			Account:   row.Account,
			ProfileID: row.ProfileID,
			Name:      row.Name,
			Surname:   row.Surname,
			Phone:     row.Phone,
			Address:   row.Address,
		})
	}
	return out, nil
}

func (r *AccountRepository) CountAccountsByRole(ctx context.Context) (map[domain.Role]int64, error) {
	var rows []struct {
		Role  domain.Role `db:"role"`
		Count int64       `db:"n"`
	}
	if err := r.store.db.SelectContext(ctx, &rows, `SELECT role, COUNT(*) AS n FROM account GROUP BY role`); err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	out := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

func findClient(ctx context.Context, q sqlx.QueryerContext, query string, arg int64) (*domain.Client, error) {
	var c domain.Client
	if err := sqlx.GetContext(ctx, q, &c, query, arg); err != nil {
		return nil, notFound(err, domain.ErrClientNotFound)
	}
	return &c, nil
}

func findCarrier(ctx context.Context, q sqlx.QueryerContext, query string, arg int64) (*domain.Carrier, error) {
	var c domain.Carrier
	if err := sqlx.GetContext(ctx, q, &c, query, arg); err != nil {
		return nil, notFound(err, domain.ErrCarrierNotFound)
	}
	return &c, nil
}
