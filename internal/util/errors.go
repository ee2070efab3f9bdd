// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrHoldingNotFound    = errors.New("holding not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderExpired       = errors.New("order expired")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidPaymentHash = errors.New("invalid payment transaction hash")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrKycRequired        = errors.New("kyc approval required")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
