package domain

import (
	"strings"
	"time"
)

// Role is the platform role carried by an account and its tokens.
type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleCarrier Role = "CARRIER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalises a wire value into a known role.
func ParseRole(v string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(v))) {
	case RoleClient:
		return RoleClient, true
	case RoleCarrier:
		return RoleCarrier, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Account models an authenticated actor in the system.
type Account struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Client is the profile linked 1:1 to a CLIENT account.
type Client struct {
	ID        int64  `json:"id" db:"id"`
	AccountID int64  `json:"account_id" db:"account_id"`
	Name      string `json:"name" db:"name"`
	Surname   string `json:"surname" db:"surname"`
	Phone     string `json:"phone" db:"phone"`
	Address   string `json:"address" db:"address"`
	City      string `json:"city" db:"city"`
}

// Carrier is the profile linked 1:1 to a CARRIER account.
type Carrier struct {
	ID            int64   `json:"id" db:"id"`
	AccountID     int64   `json:"account_id" db:"account_id"`
	Name          string  `json:"name" db:"name"`
	Surname       string  `json:"surname" db:"surname"`
	Phone         string  `json:"phone" db:"phone"`
	Location      string  `json:"location" db:"location"`
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	Available     bool    `json:"available" db:"available"`
}

// Principal is the resolved caller of a request. ClientID and CarrierID are
// only set for the matching role.
type Principal struct {
	AccountID int64
	Email     string
	Role      Role
	ClientID  int64
	CarrierID int64
}

// IsClient reports whether p is the client with the given profile id.
func (p Principal) IsClient(clientID int64) bool {
	return p.Role == RoleClient && p.ClientID != 0 && p.ClientID == clientID
}

// IsCarrier reports whether p is the carrier with the given profile id.
func (p Principal) IsCarrier(carrierID int64) bool {
	return p.Role == RoleCarrier && p.CarrierID != 0 && p.CarrierID == carrierID
}
