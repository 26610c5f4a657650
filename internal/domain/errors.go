package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Sync lifecycle errors
	ErrSyncRunning   = errors.New("sync already in progress")
	ErrSessionClosed = errors.New("browser session closed")

	// Login errors
	ErrLoginTimeout  = errors.New("timed out waiting for post-login marker")
	ErrTokenNotFound = errors.New("authorization cookie not found after login")

	// Ledger backend errors
	ErrLedgerAuth = errors.New("ledger backend did not return an init token")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrSettingsNotFound   = errors.New("settings not found")
)

// FetchError is a non-200 response from the bank's transaction API.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("transaction fetch failed with status %d: %s", e.StatusCode, e.Body)
}

// RateLookupError is a failed exchange-rate lookup. It is always fatal to
// the transformation step: importing with a guessed rate would corrupt amounts.
type RateLookupError struct {
	Currency string
	Err      error
}

func (e *RateLookupError) Error() string {
	return fmt.Sprintf("exchange rate lookup for %s failed: %v", e.Currency, e.Err)
}

func (e *RateLookupError) Unwrap() error { return e.Err }

// IsTeardown reports whether err is attributable to user-initiated
// cancellation or session-teardown noise rather than a real failure.
// Such errors resolve a run to idle without surfacing an error status.
func IsTeardown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionClosed)
}
