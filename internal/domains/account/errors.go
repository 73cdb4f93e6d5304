package account

import "errors"

// Repository-level errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrReferralNotFound   = errors.New("referral code not found")
)

// Service-level (business logic) errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBanned      = errors.New("account has been banned")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSelfReferral       = errors.New("cannot use your own referral code")

	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden: insufficient permissions")
)
