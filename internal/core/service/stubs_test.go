package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

var t0 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return t0 }

// ---------------------------------------------------------------------------
// In-memory mission store
// ---------------------------------------------------------------------------

// stubMissionRepo keeps everything in maps. WithinTx holds the mutex for the
// whole callback and restores a snapshot when the callback fails, which is
// what a rolled back SQL transaction looks like from the outside.
type stubMissionRepo struct {
	mu       sync.Mutex
	missions map[int64]domain.Mission
	history  []domain.PriceHistory
	payments map[int64]domain.Payment // by mission id
	carriers map[int64]domain.Carrier
	nextID   int64

	updateErr error // if set, UpdateMission fails
	findErr   error // if set, FindMission fails
	txCount   int
}

func newStubMissionRepo() *stubMissionRepo {
	return &stubMissionRepo{
		missions: make(map[int64]domain.Mission),
		payments: make(map[int64]domain.Payment),
		carriers: make(map[int64]domain.Carrier),
		nextID:   100,
	}
}

func (r *stubMissionRepo) seed(m domain.Mission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missions[m.ID] = m
}

func (r *stubMissionRepo) mission(id int64) domain.Mission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.missions[id]
}

func (r *stubMissionRepo) WithinTx(ctx context.Context, fn func(tx ports.MissionTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txCount++

	missions := make(map[int64]domain.Mission, len(r.missions))
	for k, v := range r.missions {
		missions[k] = v
	}
	payments := make(map[int64]domain.Payment, len(r.payments))
	for k, v := range r.payments {
		payments[k] = v
	}
	history := append([]domain.PriceHistory(nil), r.history...)

	if err := fn(stubTx{r}); err != nil {
		r.missions, r.payments, r.history = missions, payments, history
		return err
	}
	return ctx.Err()
}

type stubTx struct{ r *stubMissionRepo }

func (t stubTx) FindMissionForUpdate(_ context.Context, id int64) (*domain.Mission, error) {
	m, ok := t.r.missions[id]
	if !ok {
		return nil, domain.ErrMissionNotFound
	}
	return &m, nil
}

func (t stubTx) FindCarrier(_ context.Context, id int64) (*domain.Carrier, error) {
	c, ok := t.r.carriers[id]
	if !ok {
		return nil, domain.ErrCarrierNotFound
	}
	return &c, nil
}

func (t stubTx) FindPaymentByMission(_ context.Context, missionID int64) (*domain.Payment, error) {
	p, ok := t.r.payments[missionID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &p, nil
}

func (t stubTx) InsertMission(_ context.Context, m *domain.Mission) error {
	t.r.nextID++
	m.ID = t.r.nextID
	t.r.missions[m.ID] = *m
	return nil
}

func (t stubTx) UpdateMission(_ context.Context, m *domain.Mission) error {
	if t.r.updateErr != nil {
		return t.r.updateErr
	}
	if _, ok := t.r.missions[m.ID]; !ok {
		return domain.ErrMissionNotFound
	}
	t.r.missions[m.ID] = *m
	return nil
}

func (t stubTx) InsertPriceHistory(_ context.Context, h *domain.PriceHistory) error {
	t.r.nextID++
	h.ID = t.r.nextID
	t.r.history = append(t.r.history, *h)
	return nil
}

func (t stubTx) InsertPayment(_ context.Context, p *domain.Payment) error {
	if _, ok := t.r.payments[p.MissionID]; ok {
		return domain.ErrPaymentExists
	}
	t.r.nextID++
	p.ID = t.r.nextID
	t.r.payments[p.MissionID] = *p
	return nil
}

func (r *stubMissionRepo) FindMission(_ context.Context, id int64) (*domain.Mission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	m, ok := r.missions[id]
	if !ok {
		return nil, domain.ErrMissionNotFound
	}
	return &m, nil
}

func (r *stubMissionRepo) list(keep func(domain.Mission) bool) []domain.Mission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Mission{}
	for _, m := range r.missions {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *stubMissionRepo) ListMissionsByClient(_ context.Context, clientID int64) ([]domain.Mission, error) {
	return r.list(func(m domain.Mission) bool { return m.ClientID == clientID }), nil
}

func (r *stubMissionRepo) ListMissionsByCarrier(_ context.Context, carrierID int64) ([]domain.Mission, error) {
	return r.list(func(m domain.Mission) bool { return m.CarrierID == carrierID }), nil
}

func (r *stubMissionRepo) ListMissions(_ context.Context) ([]domain.Mission, error) {
	return r.list(func(domain.Mission) bool { return true }), nil
}

func (r *stubMissionRepo) ListPriceHistory(_ context.Context, missionID int64) ([]domain.PriceHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PriceHistory{}
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].MissionID == missionID {
			out = append(out, r.history[i])
		}
	}
	return out, nil
}

func (r *stubMissionRepo) FindPaymentByMission(_ context.Context, missionID int64) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[missionID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &p, nil
}

func (r *stubMissionRepo) ListPayments(_ context.Context) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Payment{}
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, nil
}

func (r *stubMissionRepo) ListTransactions(_ context.Context) ([]ports.TransactionRecord, error) {
	payments, _ := r.ListPayments(context.Background())
	out := make([]ports.TransactionRecord, 0, len(payments))
	for _, p := range payments {
		out = append(out, ports.TransactionRecord{Payment: p})
	}
	return out, nil
}

func (r *stubMissionRepo) count(keep func(domain.Mission) bool, statuses []domain.MissionStatus) int64 {
	var n int64
	for _, m := range r.list(keep) {
		for _, s := range statuses {
			if m.Status == s {
				n++
				break
			}
		}
	}
	return n
}

func (r *stubMissionRepo) CountMissionsByClient(_ context.Context, clientID int64, statuses ...domain.MissionStatus) (int64, error) {
	return r.count(func(m domain.Mission) bool { return m.ClientID == clientID }, statuses), nil
}

func (r *stubMissionRepo) CountMissionsByCarrier(_ context.Context, carrierID int64, statuses ...domain.MissionStatus) (int64, error) {
	return r.count(func(m domain.Mission) bool { return m.CarrierID == carrierID }, statuses), nil
}

// ---------------------------------------------------------------------------
// In-memory account store
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	clients  map[int64]*domain.Client
	carriers map[int64]*domain.Carrier
	nextID   int64
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		accounts: make(map[string]*domain.Account),
		clients:  make(map[int64]*domain.Client),
		carriers: make(map[int64]*domain.Carrier),
	}
}

func (r *stubAccountRepo) CreateAccount(_ context.Context, a *domain.Account, client *domain.Client, carrier *domain.Carrier) error {
	if _, exists := r.accounts[a.Email]; exists {
		return domain.ErrEmailTaken
	}
	r.nextID++
	a.ID = r.nextID
	clone := *a
	r.accounts[a.Email] = &clone
	if client != nil {
		r.nextID++
		client.ID, client.AccountID = r.nextID, a.ID
		c := *client
		r.clients[c.ID] = &c
	}
	if carrier != nil {
		r.nextID++
		carrier.ID, carrier.AccountID = r.nextID, a.ID
		c := *carrier
		r.carriers[c.ID] = &c
	}
	return nil
}

func (r *stubAccountRepo) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	a, ok := r.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) FindClientByAccount(_ context.Context, accountID int64) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.AccountID == accountID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubAccountRepo) FindCarrierByAccount(_ context.Context, accountID int64) (*domain.Carrier, error) {
	for _, c := range r.carriers {
		if c.AccountID == accountID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCarrierNotFound
}

func (r *stubAccountRepo) FindClient(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubAccountRepo) FindCarrier(_ context.Context, id int64) (*domain.Carrier, error) {
	c, ok := r.carriers[id]
	if !ok {
		return nil, domain.ErrCarrierNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubAccountRepo) ListAvailableCarriers(_ context.Context) ([]domain.Carrier, error) {
	out := []domain.Carrier{}
	for _, c := range r.carriers {
		if c.Available {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) UpdateClient(_ context.Context, c *domain.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return domain.ErrClientNotFound
	}
	clone := *c
	r.clients[c.ID] = &clone
	return nil
}

func (r *stubAccountRepo) UpdateCarrier(_ context.Context, c *domain.Carrier) error {
	if _, ok := r.carriers[c.ID]; !ok {
		return domain.ErrCarrierNotFound
	}
	clone := *c
	r.carriers[c.ID] = &clone
	return nil
}

func (r *stubAccountRepo) SetCarrierAvailability(_ context.Context, id int64, available bool) error {
	c, ok := r.carriers[id]
	if !ok {
		return domain.ErrCarrierNotFound
	}
	c.Available = available
	return nil
}

func (r *stubAccountRepo) ListAccounts(_ context.Context) ([]ports.AccountRecord, error) {
	out := []ports.AccountRecord{}
	for _, a := range r.accounts {
		out = append(out, ports.AccountRecord{Account: *a})
	}
	return out, nil
}

func (r *stubAccountRepo) CountAccountsByRole(_ context.Context) (map[domain.Role]int64, error) {
	out := make(map[domain.Role]int64)
	for _, a := range r.accounts {
		out[a.Role]++
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubSink struct {
	mu     sync.Mutex
	events []domain.MissionEvent
}

func (s *stubSink) Enqueue(ev domain.MissionEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

type stubTracker struct{ forgotten []int64 }

func (t *stubTracker) Forget(id int64) { t.forgotten = append(t.forgotten, id) }

type stubKeys struct {
	values    map[string]string
	lookupErr error
}

func newStubKeys() *stubKeys { return &stubKeys{values: make(map[string]string)} }

func (k *stubKeys) Lookup(_ context.Context, key string) (string, bool, error) {
	if k.lookupErr != nil {
		return "", false, k.lookupErr
	}
	v, ok := k.values[key]
	return v, ok, nil
}

func (k *stubKeys) Remember(_ context.Context, key, value string, _ time.Duration) error {
	if _, ok := k.values[key]; !ok {
		k.values[key] = value
	}
	return nil
}

type stubGateway struct {
	calls int
	err   error
}

func (g *stubGateway) Capture(_ context.Context, req ports.CaptureRequest) (*ports.CaptureResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &ports.CaptureResult{TransactionID: "TXN-0000ABCD"}, nil
}

var errBoom = errors.New("boom")

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	clientP   = domain.Principal{AccountID: 1, Email: "client@example.com", Role: domain.RoleClient, ClientID: 10}
	carrierP  = domain.Principal{AccountID: 2, Email: "carrier@example.com", Role: domain.RoleCarrier, CarrierID: 20}
	strangerP = domain.Principal{AccountID: 3, Email: "other@example.com", Role: domain.RoleCarrier, CarrierID: 21}
)

func price(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func missionIn(status domain.MissionStatus) domain.Mission {
	m := domain.Mission{
		ID:          7,
		ClientID:    clientP.ClientID,
		CarrierID:   carrierP.CarrierID,
		ScheduledAt: t0.Add(48 * time.Hour),
		Origin:      "Tunis",
		Destination: "Sousse",
		Status:      status,
		CreatedAt:   t0.Add(-time.Hour),
	}
	switch status {
	case domain.StatusPriceProposed:
		m.ProposedPrice = decimal.NewNullDecimal(price("120.00"))
	case domain.StatusPriceConfirmed:
		m.ProposedPrice = decimal.NewNullDecimal(price("120.00"))
		m.PriceConfirmed = true
	case domain.StatusAccepted, domain.StatusInProgress, domain.StatusCompleted:
		m.ProposedPrice = decimal.NewNullDecimal(price("120.00"))
		m.PriceConfirmed = true
		m.IsPaid = true
	}
	return m
}
