package handler

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
	"github.com/transporteur/marketplace/internal/core/tracking"
)

// money renders an amount as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func nullMoney(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := money(d.Decimal)
	return &n
}

func toAccountResponse(a *domain.Account) *accountResponse {
	if a == nil {
		return nil
	}
	return &accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

func toMissionResponse(d ports.MissionDetail) missionResponse {
	m := d.Mission
	history := make([]priceHistoryResponse, 0, len(d.PriceHistory))
	for _, h := range d.PriceHistory {
		history = append(history, priceHistoryResponse{
			ID:        h.ID,
			OldPrice:  nullMoney(h.OldPrice),
			NewPrice:  money(h.NewPrice),
			Reason:    h.Reason,
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
		})
	}
	return missionResponse{
		ID:             m.ID,
		ClientID:       m.ClientID,
		ClientName:     m.ClientName,
		ClientSurname:  m.ClientSurname,
		CarrierID:      m.CarrierID,
		CarrierName:    m.CarrierName,
		CarrierSurname: m.CarrierSurname,
		ScheduledAt:    m.ScheduledAt,
		Origin:         m.Origin,
		Destination:    m.Destination,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
		Description:    m.Description,
		ProposedPrice:  nullMoney(m.ProposedPrice),
		PriceConfirmed: m.PriceConfirmed,
		IsPaid:         m.IsPaid,
		PriceHistory:   history,
	}
}

func toMissionResponses(details []ports.MissionDetail) []missionResponse {
	out := make([]missionResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toMissionResponse(d))
	}
	return out
}

func toCarrierResponse(c domain.Carrier) carrierResponse {
	return carrierResponse{
		ID:            c.ID,
		Name:          c.Name,
		Surname:       c.Surname,
		Phone:         c.Phone,
		Location:      c.Location,
		AverageRating: c.AverageRating,
		Available:     c.Available,
	}
}

func toClientProfileResponse(c domain.Client) clientProfileResponse {
	return clientProfileResponse{
		ID:      c.ID,
		Name:    c.Name,
		Surname: c.Surname,
		Phone:   c.Phone,
		Address: c.Address,
		City:    c.City,
	}
}

func toPaymentResponse(p domain.Payment, message string) paymentResponse {
	return paymentResponse{
		PaymentID:     p.ID,
		MissionID:     p.MissionID,
		Amount:        money(p.Amount),
		TransactionID: p.TransactionID,
		PaymentStatus: string(p.Status),
		PaymentDate:   p.PaidAt,
		CardLastFour:  p.CardLastFour,
		Message:       message,
	}
}

func toLocationResponse(l *tracking.Location) locationResponse {
	return locationResponse{
		MissionID:          l.MissionID,
		Latitude:           l.Latitude,
		Longitude:          l.Longitude,
		Timestamp:          l.Timestamp,
		ProgressPercentage: l.ProgressPercentage,
		Speed:              l.Speed,
		Status:             string(l.Status),
	}
}

func toAccountRecordResponse(r ports.AccountRecord) accountRecordResponse {
	return accountRecordResponse{
		ID:        r.Account.ID,
		Email:     r.Account.Email,
		Role:      string(r.Account.Role),
		CreatedAt: r.Account.CreatedAt,
		ProfileID: r.ProfileID,
		Name:      r.Name,
		Surname:   r.Surname,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

func toTransactionResponse(r ports.TransactionRecord) transactionResponse {
	p := r.Payment
	return transactionResponse{
		PaymentID:      p.ID,
		MissionID:      p.MissionID,
		Amount:         money(p.Amount),
		TransactionID:  p.TransactionID,
		PaymentStatus:  string(p.Status),
		PaymentDate:    p.PaidAt,
		CardLastFour:   p.CardLastFour,
		CardHolderName: p.CardHolderName,
		Origin:         r.MissionOrigin,
		Destination:    r.MissionDestination,
		ScheduledAt:    r.MissionScheduledAt,
		ClientName:     r.ClientName,
		ClientSurname:  r.ClientSurname,
		ClientEmail:    r.ClientEmail,
		CarrierName:    r.CarrierName,
		CarrierSurname: r.CarrierSurname,
		CarrierEmail:   r.CarrierEmail,
	}
}

func toActivityWindow(w ports.ActivityWindow) activityWindowResponse {
	return activityWindowResponse{
		Missions: w.Missions,
		Payments: w.Payments,
		Revenue:  money(w.Revenue),
	}
}

func toStatisticsResponse(s *ports.PlatformStatistics) statisticsResponse {
	byStatus := make(map[string]int64, len(s.MissionsByStatus))
	for status, n := range s.MissionsByStatus {
		byStatus[string(status)] = n
	}
	return statisticsResponse{
		TotalAccounts:    s.TotalAccounts,
		TotalClients:     s.TotalClients,
		TotalCarriers:    s.TotalCarriers,
		TotalAdmins:      s.TotalAdmins,
		TotalMissions:    s.TotalMissions,
		MissionsByStatus: byStatus,
		PaidMissions:     s.PaidMissions,
		UnpaidMissions:   s.UnpaidMissions,
		TotalPayments:    s.TotalPayments,
		TotalRevenue:     money(s.TotalRevenue),
		AveragePayment:   money(s.AveragePayment),
		Today:            toActivityWindow(s.Today),
		ThisWeek:         toActivityWindow(s.ThisWeek),
		ThisMonth:        toActivityWindow(s.ThisMonth),
	}
}

func toAuditEventResponse(e domain.MissionEvent) auditEventResponse {
	return auditEventResponse{
		MissionID:  e.MissionID,
		Event:      e.Event,
		From:       string(e.From),
		To:         string(e.To),
		ActorEmail: e.ActorEmail,
		ActorRole:  string(e.ActorRole),
		Price:      nullMoney(e.Price),
		IsPaid:     e.IsPaid,
		OccurredAt: e.OccurredAt,
	}
}
