package domain

import "errors"

// Lookup failures.
var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrCarrierNotFound = errors.New("carrier not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// Lifecycle precondition failures.
var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrPricePrecision     = errors.New("price must have at most two decimal places")
	ErrPriceNotProposed   = errors.New("no price has been proposed")
	ErrPriceConfirmed     = errors.New("price already confirmed")
	ErrCarrierUnavailable = errors.New("carrier is not available")
	ErrNotPaid            = errors.New("mission must be paid before starting")
	ErrAlreadyPaid        = errors.New("mission already paid")
	ErrPaymentExists      = errors.New("payment already exists for this mission")
	ErrAmountMismatch     = errors.New("payment amount mismatch")
	ErrCardDeclined       = errors.New("card declined")
	ErrIdempotencyReuse   = errors.New("idempotency key already used for another mission")
)

// Authorization and account failures.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrNotMissionParty    = errors.New("not a party to this mission")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidRole        = errors.New("role must be CLIENT or CARRIER")
	ErrProfileRequired    = errors.New("name and surname are required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)
