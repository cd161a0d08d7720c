package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required"`
	Name     string `json:"name"     validate:"required"`
	Surname  string `json:"surname"  validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Location string `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokenResponse struct {
	Token   string           `json:"token"`
	Account *accountResponse `json:"account,omitempty"`
}

// --- Missions ---

type createMissionRequest struct {
	CarrierID   int64     `json:"carrierId"   validate:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Origin      string    `json:"origin"      validate:"required"`
	Destination string    `json:"destination" validate:"required"`
	Description string    `json:"description"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type proposePriceRequest struct {
	ProposedPrice decimal.Decimal `json:"proposedPrice" validate:"required,gt=0"`
}

type updatePriceRequest struct {
	NewPrice decimal.Decimal `json:"newPrice" validate:"required,gt=0"`
	Reason   string          `json:"reason"`
}

type priceHistoryResponse struct {
	ID        int64        `json:"id"`
	OldPrice  *json.Number `json:"oldPrice"`
	NewPrice  json.Number  `json:"newPrice"`
	Reason    string       `json:"reason"`
	ChangedBy string       `json:"changedBy"`
	ChangedAt time.Time    `json:"changedAt"`
}

type missionResponse struct {
	ID             int64                  `json:"id"`
	ClientID       int64                  `json:"clientId"`
	ClientName     string                 `json:"clientName"`
	ClientSurname  string                 `json:"clientSurname"`
	CarrierID      int64                  `json:"carrierId"`
	CarrierName    string                 `json:"carrierName"`
	CarrierSurname string                 `json:"carrierSurname"`
	ScheduledAt    time.Time              `json:"scheduledAt"`
	Origin         string                 `json:"origin"`
	Destination    string                 `json:"destination"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"createdAt"`
	Description    string                 `json:"description"`
	ProposedPrice  *json.Number           `json:"proposedPrice"`
	PriceConfirmed bool                   `json:"priceConfirmed"`
	IsPaid         bool                   `json:"isPaid"`
	PriceHistory   []priceHistoryResponse `json:"priceHistory"`
}

type carrierResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Surname       string  `json:"surname"`
	Phone         string  `json:"phone"`
	Location      string  `json:"location"`
	AverageRating float64 `json:"averageRating"`
	Available     bool    `json:"available"`
}

type carrierContactResponse struct {
	CarrierID int64  `json:"carrierId"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Phone     string `json:"phone"`
}

// --- Payments ---

type processPaymentRequest struct {
	MissionID      int64           `json:"missionId"      validate:"required,gt=0"`
	CardNumber     string          `json:"cardNumber"     validate:"required,numeric,min=12,max=19"`
	CardHolderName string          `json:"cardHolderName" validate:"required"`
	ExpiryMonth    int             `json:"expiryMonth"    validate:"required,min=1,max=12"`
	ExpiryYear     int             `json:"expiryYear"     validate:"required,min=2000"`
	CVV            string          `json:"cvv"            validate:"required,numeric,min=3,max=4"`
	Amount         decimal.Decimal `json:"amount"         validate:"required,gt=0"`
}

type paymentResponse struct {
	PaymentID     int64       `json:"paymentId"`
	MissionID     int64       `json:"missionId"`
	Amount        json.Number `json:"amount"`
	TransactionID string      `json:"transactionId"`
	PaymentStatus string      `json:"paymentStatus"`
	PaymentDate   time.Time   `json:"paymentDate"`
	CardLastFour  string      `json:"cardLastFour"`
	Message       string      `json:"message"`
}

type paymentStatusResponse struct {
	MissionID     int64        `json:"missionId"`
	IsPaid        bool         `json:"isPaid"`
	Amount        *json.Number `json:"amount"`
	PaymentStatus string       `json:"paymentStatus"`
	Message       string       `json:"message"`
}

// --- Tracking ---

type locationResponse struct {
	MissionID          int64     `json:"missionId"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	Timestamp          time.Time `json:"timestamp"`
	ProgressPercentage int       `json:"progressPercentage"`
	Speed              float64   `json:"speed"`
	Status             string    `json:"status"`
}

// --- Profiles ---

type updateProfileRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Location string `json:"location"`
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type clientProfileResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type clientDashboardResponse struct {
	Email             string                `json:"email"`
	Profile           clientProfileResponse `json:"profile"`
	CompletedMissions int64                 `json:"completedMissions"`
	ActiveMissions    int64                 `json:"activeMissions"`
	WelcomeMessage    string                `json:"welcomeMessage"`
}

type carrierDashboardResponse struct {
	Email             string          `json:"email"`
	Profile           carrierResponse `json:"profile"`
	CompletedMissions int64           `json:"completedMissions"`
	ActiveMissions    int64           `json:"activeMissions"`
	WelcomeMessage    string          `json:"welcomeMessage"`
}

type adminProfileResponse struct {
	AccountID   int64     `json:"accountId"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	Permissions []string  `json:"permissions"`
}

// --- Admin ---

type accountRecordResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ProfileID int64     `json:"profileId,omitempty"`
	Name      string    `json:"name,omitempty"`
	Surname   string    `json:"surname,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
}

type transactionResponse struct {
	PaymentID      int64       `json:"paymentId"`
	MissionID      int64       `json:"missionId"`
	Amount         json.Number `json:"amount"`
	TransactionID  string      `json:"transactionId"`
	PaymentStatus  string      `json:"paymentStatus"`
	PaymentDate    time.Time   `json:"paymentDate"`
	CardLastFour   string      `json:"cardLastFour"`
	CardHolderName string      `json:"cardHolderName"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	ScheduledAt    time.Time   `json:"scheduledAt"`
	ClientName     string      `json:"clientName"`
	ClientSurname  string      `json:"clientSurname"`
	ClientEmail    string      `json:"clientEmail"`
	CarrierName    string      `json:"carrierName"`
	CarrierSurname string      `json:"carrierSurname"`
	CarrierEmail   string      `json:"carrierEmail"`
}

type activityWindowResponse struct {
	Missions int64       `json:"missions"`
	Payments int64       `json:"payments"`
	Revenue  json.Number `json:"revenue"`
}

type statisticsResponse struct {
	TotalAccounts    int64                  `json:"totalAccounts"`
	TotalClients     int64                  `json:"totalClients"`
	TotalCarriers    int64                  `json:"totalCarriers"`
	TotalAdmins      int64                  `json:"totalAdmins"`
	TotalMissions    int64                  `json:"totalMissions"`
	MissionsByStatus map[string]int64       `json:"missionsByStatus"`
	PaidMissions     int64                  `json:"paidMissions"`
	UnpaidMissions   int64                  `json:"unpaidMissions"`
	TotalPayments    int64                  `json:"totalPayments"`
	TotalRevenue     json.Number            `json:"totalRevenue"`
	AveragePayment   json.Number            `json:"averagePayment"`
	Today            activityWindowResponse `json:"today"`
	ThisWeek         activityWindowResponse `json:"thisWeek"`
	ThisMonth        activityWindowResponse `json:"thisMonth"`
}

type auditEventResponse struct {
	MissionID  int64        `json:"missionId"`
	Event      string       `json:"event"`
	From       string       `json:"from,omitempty"`
	To         string       `json:"to"`
	ActorEmail string       `json:"actorEmail"`
	ActorRole  string       `json:"actorRole"`
	Price      *json.Number `json:"price"`
	IsPaid     bool         `json:"isPaid"`
	OccurredAt time.Time    `json:"occurredAt"`
}
