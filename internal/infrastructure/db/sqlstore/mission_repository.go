package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const missionSelect = `
SELECT m.id, m.client_id, m.carrier_id, m.scheduled_at, m.origin, m.destination,
       m.description, m.status, m.proposed_price, m.price_confirmed, m.is_paid, m.created_at,
       c.name AS client_name, c.surname AS client_surname,
       k.name AS carrier_name, k.surname AS carrier_surname
FROM mission m
JOIN client c ON c.id = m.client_id
JOIN carrier k ON k.id = m.carrier_id`

const paymentColumns = `
id, mission_id, client_id, carrier_id, amount, card_last_four,
card_holder_name, transaction_id, status, paid_at`

type MissionRepository struct {
	store *Store
}

func NewMissionRepository(store *Store) *MissionRepository {
	return &MissionRepository{store: store}
}

var _ ports.MissionRepository = (*MissionRepository)(nil)

func (r *MissionRepository) WithinTx(ctx context.Context, fn func(tx ports.MissionTx) error) error {
	tx, err := r.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	if err := fn(&missionTx{tx: tx, store: r.store}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *MissionRepository) FindMission(ctx context.Context, id int64) (*domain.Mission, error) {
	return findMission(ctx, r.store.db, r.store.db.Rebind(missionSelect+" WHERE m.id = ?"), id)
}

func (r *MissionRepository) ListMissionsByClient(ctx context.Context, clientID int64) ([]domain.Mission, error) {
	return r.listMissions(ctx, missionSelect+" WHERE m.client_id = ? ORDER BY m.created_at DESC, m.id DESC", clientID)
}

func (r *MissionRepository) ListMissionsByCarrier(ctx context.Context, carrierID int64) ([]domain.Mission, error) {
	return r.listMissions(ctx, missionSelect+" WHERE m.carrier_id = ? ORDER BY m.created_at DESC, m.id DESC", carrierID)
}

func (r *MissionRepository) ListMissions(ctx context.Context) ([]domain.Mission, error) {
	return r.listMissions(ctx, missionSelect+" ORDER BY m.id")
}

func (r *MissionRepository) listMissions(ctx context.Context, query string, args ...any) ([]domain.Mission, error) {
	missions := []domain.Mission{}
	if err := r.store.db.SelectContext(ctx, &missions, r.store.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return missions, nil
}

func (r *MissionRepository) ListPriceHistory(ctx context.Context, missionID int64) ([]domain.PriceHistory, error) {
	rows := []domain.PriceHistory{}
	query := r.store.db.Rebind(`
SELECT id, mission_id, old_price, new_price, reason, changed_by, changed_at
FROM price_history
WHERE mission_id = ?
ORDER BY changed_at DESC, id DESC`)
	if err := r.store.db.SelectContext(ctx, &rows, query, missionID); err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	return rows, nil
}

func (r *MissionRepository) FindPaymentByMission(ctx context.Context, missionID int64) (*domain.Payment, error) {
	return findPayment(ctx, r.store.db, r.store.db.Rebind("SELECT"+paymentColumns+" FROM payment WHERE mission_id = ?"), missionID)
}

func (r *MissionRepository) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	payments := []domain.Payment{}
	if err := r.store.db.SelectContext(ctx, &payments, "SELECT"+paymentColumns+" FROM payment ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

type transactionRow struct {
	domain.Payment
	Origin         string    `db:"origin"`
	Destination    string    `db:"destination"`
	ScheduledAt    time.Time `db:"scheduled_at"`
	ClientName     string    `db:"client_name"`
	ClientSurname  string    `db:"client_surname"`
	ClientEmail    string    `db:"client_email"`
	CarrierName    string    `db:"carrier_name"`
	CarrierSurname string    `db:"carrier_surname"`
	CarrierEmail   string    `db:"carrier_email"`
}

func (r *MissionRepository) ListTransactions(ctx context.Context) ([]ports.TransactionRecord, error) {
	var rows []transactionRow
	err := r.store.db.SelectContext(ctx, &rows, `
SELECT p.id, p.mission_id, p.client_id, p.carrier_id, p.amount, p.card_last_four,
       p.card_holder_name, p.transaction_id, p.status, p.paid_at,
       m.origin, m.destination, m.scheduled_at,
       c.name AS client_name, c.surname AS client_surname, ca.email AS client_email,
       k.name AS carrier_name, k.surname AS carrier_surname, ka.email AS carrier_email
FROM payment p
JOIN mission m ON m.id = p.mission_id
JOIN client c ON c.id = p.client_id
JOIN account ca ON ca.id = c.account_id
JOIN carrier k ON k.id = p.carrier_id
JOIN account ka ON ka.id = k.account_id
ORDER BY p.paid_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]ports.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.TransactionRecord{
			Payment:            row.Payment,
			MissionOrigin:      row.Origin,
			MissionDestination: row.Destination,
			MissionScheduledAt: row.ScheduledAt,
			ClientName:         row.ClientName,
			ClientSurname:      row.ClientSurname,
			ClientEmail:        row.ClientEmail,
			CarrierName:        row.CarrierName,
			CarrierSurname:     row.CarrierSurname,
			CarrierEmail:       row.CarrierEmail,
		})
	}
	return out, nil
}

func (r *MissionRepository) CountMissionsByClient(ctx context.Context, clientID int64, statuses ...domain.MissionStatus) (int64, error) {
	return r.countMissions(ctx, "client_id", clientID, statuses)
}

func (r *MissionRepository) CountMissionsByCarrier(ctx context.Context, carrierID int64, statuses ...domain.MissionStatus) (int64, error) {
	return r.countMissions(ctx, "carrier_id", carrierID, statuses)
}

// countMissions counts by owner column. With no statuses every mission counts.
func (r *MissionRepository) countMissions(ctx context.Context, column string, id int64, statuses []domain.MissionStatus) (int64, error) {
	query := "SELECT COUNT(*) FROM mission WHERE " + column + " = ?"
	args := []any{id}
	if len(statuses) > 0 {
		var err error
		query, args, err = sqlx.In(query+" AND status IN (?)", id, statuses)
		if err != nil {
			return 0, fmt.Errorf("build count query: %w", err)
		}
	}

	var n int64
	if err := r.store.db.GetContext(ctx, &n, r.store.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count missions: %w", err)
	}
	return n, nil
}

// missionTx implements ports.MissionTx over a single sqlx transaction.
type missionTx struct {
	tx    *sqlx.Tx
	store *Store
}

func (t *missionTx) FindMissionForUpdate(ctx context.Context, id int64) (*domain.Mission, error) {
	query := t.tx.Rebind(missionSelect + " WHERE m.id = ?" + t.store.lockClause())
	return findMission(ctx, t.tx, query, id)
}

func (t *missionTx) FindCarrier(ctx context.Context, id int64) (*domain.Carrier, error) {
	return findCarrier(ctx, t.tx, t.tx.Rebind("SELECT"+carrierColumns+" FROM carrier WHERE id = ?"), id)
}

func (t *missionTx) FindPaymentByMission(ctx context.Context, missionID int64) (*domain.Payment, error) {
	return findPayment(ctx, t.tx, t.tx.Rebind("SELECT"+paymentColumns+" FROM payment WHERE mission_id = ?"), missionID)
}

func (t *missionTx) InsertMission(ctx context.Context, m *domain.Mission) error {
	query := t.tx.Rebind(`
INSERT INTO mission (client_id, carrier_id, scheduled_at, origin, destination, description,
                     status, proposed_price, price_confirmed, is_paid, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := t.tx.QueryRowxContext(ctx, query,
		m.ClientID, m.CarrierID, m.ScheduledAt.UTC(), m.Origin, m.Destination, m.Description,
		m.Status, m.ProposedPrice, m.PriceConfirmed, m.IsPaid, m.CreatedAt.UTC(),
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert mission: %w", err)
	}
	return nil
}

func (t *missionTx) UpdateMission(ctx context.Context, m *domain.Mission) error {
	query := t.tx.Rebind(`
UPDATE mission
SET status = ?, proposed_price = ?, price_confirmed = ?, is_paid = ?
WHERE id = ?`)
	res, err := t.tx.ExecContext(ctx, query, m.Status, m.ProposedPrice, m.PriceConfirmed, m.IsPaid, m.ID)
	if err != nil {
		return fmt.Errorf("update mission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrMissionNotFound
	}
	return nil
}

func (t *missionTx) InsertPriceHistory(ctx context.Context, h *domain.PriceHistory) error {
	query := t.tx.Rebind(`
INSERT INTO price_history (mission_id, old_price, new_price, reason, changed_by, changed_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := t.tx.QueryRowxContext(ctx, query,
		h.MissionID, h.OldPrice, h.NewPrice, h.Reason, h.ChangedBy, h.ChangedAt.UTC(),
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	return nil
}

func (t *missionTx) InsertPayment(ctx context.Context, p *domain.Payment) error {
	query := t.tx.Rebind(`
INSERT INTO payment (mission_id, client_id, carrier_id, amount, card_last_four,
                     card_holder_name, transaction_id, status, paid_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := t.tx.QueryRowxContext(ctx, query,
		p.MissionID, p.ClientID, p.CarrierID, p.Amount, p.CardLastFour,
		p.CardHolderName, p.TransactionID, p.Status, p.PaidAt.UTC(),
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return domain.ErrPaymentExists
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func findMission(ctx context.Context, q sqlx.QueryerContext, query string, id int64) (*domain.Mission, error) {
	var m domain.Mission
	if err := sqlx.GetContext(ctx, q, &m, query, id); err != nil {
		return nil, notFound(err, domain.ErrMissionNotFound)
	}
	return &m, nil
}

func findPayment(ctx context.Context, q sqlx.QueryerContext, query string, missionID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := sqlx.GetContext(ctx, q, &p, query, missionID); err != nil {
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}
	return &p, nil
}
