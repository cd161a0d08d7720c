package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

type stubMissionService struct {
	availableFn      func(ctx context.Context) ([]domain.Carrier, error)
	createFn         func(ctx context.Context, p domain.Principal, in ports.CreateMissionInput) (*ports.MissionDetail, error)
	listForClientFn  func(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error)
	listForCarrierFn func(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error)
	getFn            func(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error)
	updateStatusFn   func(ctx context.Context, p domain.Principal, id int64, status string) (*ports.MissionDetail, error)
	cancelFn         func(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error)
	proposeFn        func(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal) (*ports.MissionDetail, error)
	confirmFn        func(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error)
	updatePriceFn    func(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal, reason string) (*ports.MissionDetail, error)
	contactFn        func(ctx context.Context, p domain.Principal, id int64) (*ports.CarrierContact, error)
}

func (s *stubMissionService) AvailableCarriers(ctx context.Context) ([]domain.Carrier, error) {
	return s.availableFn(ctx)
}

func (s *stubMissionService) Create(ctx context.Context, p domain.Principal, in ports.CreateMissionInput) (*ports.MissionDetail, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubMissionService) ListForClient(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error) {
	return s.listForClientFn(ctx, p)
}

func (s *stubMissionService) ListForCarrier(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error) {
	return s.listForCarrierFn(ctx, p)
}

func (s *stubMissionService) Get(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubMissionService) UpdateStatus(ctx context.Context, p domain.Principal, id int64, status string) (*ports.MissionDetail, error) {
	return s.updateStatusFn(ctx, p, id, status)
}

func (s *stubMissionService) Cancel(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
	return s.cancelFn(ctx, p, id)
}

func (s *stubMissionService) ProposePrice(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal) (*ports.MissionDetail, error) {
	return s.proposeFn(ctx, p, id, price)
}

func (s *stubMissionService) ConfirmPrice(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
	return s.confirmFn(ctx, p, id)
}

func (s *stubMissionService) UpdatePrice(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal, reason string) (*ports.MissionDetail, error) {
	return s.updatePriceFn(ctx, p, id, price, reason)
}

func (s *stubMissionService) CarrierContact(ctx context.Context, p domain.Principal, id int64) (*ports.CarrierContact, error) {
	return s.contactFn(ctx, p, id)
}

var scheduled = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleDetail(status domain.MissionStatus) *ports.MissionDetail {
	return &ports.MissionDetail{
		Mission: domain.Mission{
			ID:             7,
			ClientID:       10,
			CarrierID:      20,
			ScheduledAt:    scheduled,
			Origin:         "Sousse",
			Destination:    "Monastir",
			Status:         status,
			ClientName:     "Amira",
			ClientSurname:  "Trabelsi",
			CarrierName:    "Karim",
			CarrierSurname: "Ben Ali",
			CreatedAt:      scheduled.Add(-24 * time.Hour),
		},
		PriceHistory: []domain.PriceHistory{},
	}
}

func TestMissionHandler_Create_Success(t *testing.T) {
	stub := &stubMissionService{
		createFn: func(ctx context.Context, p domain.Principal, in ports.CreateMissionInput) (*ports.MissionDetail, error) {
			if p.ClientID != clientP.ClientID {
				t.Fatalf("unexpected principal: %+v", p)
			}
			if in.CarrierID != 20 || in.Origin != "Sousse" || !in.ScheduledAt.Equal(scheduled) {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleDetail(domain.StatusAwaiting), nil
		},
	}
	h := NewMissionHandler(stub)

	body := `{"carrierId":20,"scheduledAt":"2026-05-01T09:00:00Z","origin":"Sousse","destination":"Monastir","description":"boxes"}`
	c, rec := newContext(http.MethodPost, "/missions", body, clientP)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	expectStatus(t, rec, http.StatusCreated)
	resp := decode(t, rec)
	if resp["status"] != "AWAITING" || resp["clientName"] != "Amira" || resp["carrierSurname"] != "Ben Ali" {
		t.Fatalf("unexpected mission payload: %+v", resp)
	}
	if resp["proposedPrice"] != nil || resp["isPaid"] != false {
		t.Fatalf("new mission must have no price and be unpaid: %+v", resp)
	}
	if _, ok := resp["priceHistory"].([]any); !ok {
		t.Fatalf("priceHistory must be an array, got %v", resp["priceHistory"])
	}
}

func TestMissionHandler_Create_ValidationError(t *testing.T) {
	stub := &stubMissionService{
		createFn: func(ctx context.Context, p domain.Principal, in ports.CreateMissionInput) (*ports.MissionDetail, error) {
			return nil, failCall(t)
		},
	}
	h := NewMissionHandler(stub)

	c, _ := newContext(http.MethodPost, "/missions", `{"carrierId":20,"scheduledAt":"2026-05-01T09:00:00Z"}`, clientP)
	err := h.Create(c)
	expectHTTPError(t, err, http.StatusBadRequest)
	if !strings.Contains(err.Error(), "origin is required") {
		t.Fatalf("expected json field name in message, got %v", err)
	}
}

func TestMissionHandler_Create_InvalidPayload(t *testing.T) {
	h := NewMissionHandler(&stubMissionService{})

	c, _ := newContext(http.MethodPost, "/missions", "not-json", clientP)
	expectHTTPError(t, h.Create(c), http.StatusBadRequest)
}

func TestMissionHandler_RequiresPrincipal(t *testing.T) {
	h := NewMissionHandler(&stubMissionService{})

	c, _ := newContext(http.MethodGet, "/missions/client", "", domain.Principal{})
	expectHTTPError(t, h.ListForClient(c), http.StatusUnauthorized)
}

func TestMissionHandler_Get_InvalidID(t *testing.T) {
	h := NewMissionHandler(&stubMissionService{})

	for _, id := range []string{"abc", "0", "-3"} {
		c, _ := newContext(http.MethodGet, "/missions/"+id, "", clientP)
		expectHTTPError(t, h.Get(withParam(c, "id", id)), http.StatusBadRequest)
	}
}

func TestMissionHandler_Get_PropagatesDomainError(t *testing.T) {
	stub := &stubMissionService{
		getFn: func(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
			return nil, domain.ErrNotMissionParty
		},
	}
	h := NewMissionHandler(stub)

	c, _ := newContext(http.MethodGet, "/missions/7", "", carrierP)
	if err := h.Get(withParam(c, "id", "7")); !errors.Is(err, domain.ErrNotMissionParty) {
		t.Fatalf("expected ErrNotMissionParty, got %v", err)
	}
}

func TestMissionHandler_ListForCarrier(t *testing.T) {
	stub := &stubMissionService{
		listForCarrierFn: func(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error) {
			return []ports.MissionDetail{*sampleDetail(domain.StatusAccepted), *sampleDetail(domain.StatusCompleted)}, nil
		},
	}
	h := NewMissionHandler(stub)

	c, rec := newContext(http.MethodGet, "/missions/carrier", "", carrierP)
	if err := h.ListForCarrier(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if list := decodeList(t, rec); len(list) != 2 || list[1]["status"] != "COMPLETED" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestMissionHandler_UpdateStatus(t *testing.T) {
	var got string
	stub := &stubMissionService{
		updateStatusFn: func(ctx context.Context, p domain.Principal, id int64, status string) (*ports.MissionDetail, error) {
			got = status
			return sampleDetail(domain.StatusInProgress), nil
		},
	}
	h := NewMissionHandler(stub)

	c, rec := newContext(http.MethodPut, "/missions/7/status", `{"status":"IN_PROGRESS"}`, carrierP)
	if err := h.UpdateStatus(withParam(c, "id", "7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if got != "IN_PROGRESS" {
		t.Fatalf("expected IN_PROGRESS forwarded, got %q", got)
	}
}

func TestMissionHandler_UpdateStatus_RejectsOtherTargets(t *testing.T) {
	stub := &stubMissionService{
		updateStatusFn: func(ctx context.Context, p domain.Principal, id int64, status string) (*ports.MissionDetail, error) {
			return nil, failCall(t)
		},
	}
	h := NewMissionHandler(stub)

	c, _ := newContext(http.MethodPut, "/missions/7/status", `{"status":"CANCELLED"}`, carrierP)
	if err := h.UpdateStatus(withParam(c, "id", "7")); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestMissionHandler_ProposePrice(t *testing.T) {
	stub := &stubMissionService{
		proposeFn: func(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal) (*ports.MissionDetail, error) {
			if id != 7 || !price.Equal(decimal.RequireFromString("150.5")) {
				t.Fatalf("unexpected args: %d %s", id, price)
			}
			d := sampleDetail(domain.StatusPriceProposed)
			d.Mission.ProposedPrice = decimal.NewNullDecimal(price)
			return d, nil
		},
	}
	h := NewMissionHandler(stub)

	c, rec := newContext(http.MethodPost, "/missions/7/propose-price", `{"proposedPrice":150.5}`, carrierP)
	if err := h.ProposePrice(withParam(c, "id", "7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"proposedPrice":150.50`) {
		t.Fatalf("price must render with two decimals: %s", rec.Body.String())
	}
}

func TestMissionHandler_ProposePrice_NonPositive(t *testing.T) {
	stub := &stubMissionService{
		proposeFn: func(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal) (*ports.MissionDetail, error) {
			return nil, failCall(t)
		},
	}
	h := NewMissionHandler(stub)

	for _, body := range []string{`{"proposedPrice":0}`, `{"proposedPrice":-5}`, `{}`} {
		c, _ := newContext(http.MethodPost, "/missions/7/propose-price", body, carrierP)
		expectHTTPError(t, h.ProposePrice(withParam(c, "id", "7")), http.StatusBadRequest)
	}
}

func TestMissionHandler_UpdatePrice_RendersHistory(t *testing.T) {
	stub := &stubMissionService{
		updatePriceFn: func(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal, reason string) (*ports.MissionDetail, error) {
			if reason != "fuel" {
				t.Fatalf("unexpected reason %q", reason)
			}
			d := sampleDetail(domain.StatusPriceProposed)
			d.Mission.ProposedPrice = decimal.NewNullDecimal(price)
			d.PriceHistory = []domain.PriceHistory{{
				ID:        1,
				MissionID: 7,
				OldPrice:  decimal.NewNullDecimal(decimal.NewFromInt(100)),
				NewPrice:  price,
				Reason:    reason,
				ChangedBy: carrierP.Email,
				ChangedAt: scheduled,
			}}
			return d, nil
		},
	}
	h := NewMissionHandler(stub)

	c, rec := newContext(http.MethodPut, "/missions/7/update-price", `{"newPrice":"120","reason":"fuel"}`, carrierP)
	if err := h.UpdatePrice(withParam(c, "id", "7")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"oldPrice":100.00`) || !strings.Contains(body, `"newPrice":120.00`) {
		t.Fatalf("unexpected history payload: %s", body)
	}
}

func TestMissionHandler_ConfirmAndCancel(t *testing.T) {
	stub := &stubMissionService{
		confirmFn: func(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
			return sampleDetail(domain.StatusPriceConfirmed), nil
		},
		cancelFn: func(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
			return nil, domain.ErrInvalidTransition
		},
	}
	h := NewMissionHandler(stub)

	c, rec := newContext(http.MethodPost, "/missions/7/confirm-price", "", clientP)
	if err := h.ConfirmPrice(withParam(c, "id", "7")); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if resp := decode(t, rec); resp["status"] != "PRICE_CONFIRMED" {
		t.Fatalf("unexpected status: %v", resp["status"])
	}

	c, _ = newContext(http.MethodPut, "/missions/7/cancel", "", clientP)
	if err := h.Cancel(withParam(c, "id", "7")); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMissionHandler_AvailableCarriersAndContact(t *testing.T) {
	stub := &stubMissionService{
		availableFn: func(ctx context.Context) ([]domain.Carrier, error) {
			return []domain.Carrier{{ID: 20, Name: "Karim", Surname: "Ben Ali", Available: true, AverageRating: 4.5}}, nil
		},
		contactFn: func(ctx context.Context, p domain.Principal, id int64) (*ports.CarrierContact, error) {
			return &ports.CarrierContact{CarrierID: 20, Name: "Karim", Surname: "Ben Ali", Phone: "+21650000000"}, nil
		},
	}
	h := NewMissionHandler(stub)

	c, rec := newContext(http.MethodGet, "/missions/carriers/available", "", clientP)
	if err := h.AvailableCarriers(c); err != nil {
		t.Fatalf("available: %v", err)
	}
	if list := decodeList(t, rec); len(list) != 1 || list[0]["averageRating"] != 4.5 {
		t.Fatalf("unexpected carriers: %+v", list)
	}

	c, rec = newContext(http.MethodGet, "/missions/7/carrier/contact", "", clientP)
	if err := h.CarrierContact(withParam(c, "id", "7")); err != nil {
		t.Fatalf("contact: %v", err)
	}
	if resp := decode(t, rec); resp["phone"] != "+21650000000" {
		t.Fatalf("unexpected contact: %+v", resp)
	}
}
