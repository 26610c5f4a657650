package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/banksync/internal/domain"
)

// BrowserSession is one authenticated headless-browser session. Sessions
// are never reused across runs: credentials and cookies must not leak
// between runs.
type BrowserSession interface {
	// Login drives the bank's login flow. onOTPWait is invoked if the
	// post-login marker does not attach within the short bound and the
	// session falls back to the long out-of-band-passcode wait. Returns
	// domain.ErrLoginTimeout if the long bound is exceeded.
	Login(ctx context.Context, username, password string, onOTPWait func()) error

	// BearerToken reads the bank's auth-token cookie from the session.
	// Returns domain.ErrTokenNotFound if the cookie is absent.
	BearerToken(ctx context.Context) (string, error)

	// CaptureFrame grabs a low-quality still of the current page.
	CaptureFrame(ctx context.Context) ([]byte, error)

	// Alive reports whether the page handle is still usable.
	Alive() bool

	// Close releases the page, context and browser process.
	Close() error
}

// BrowserFactory launches an isolated browser session per run.
type BrowserFactory interface {
	NewSession(ctx context.Context) (BrowserSession, error)
}

// TransactionFetcher retrieves raw transactions for a date range using
// the session's bearer token.
type TransactionFetcher interface {
	Fetch(ctx context.Context, token string, from, to time.Time) ([]domain.RawTransaction, error)
}

// LedgerClient talks to the budgeting backend's import API.
type LedgerClient interface {
	// Init authenticates against the backend and returns its import token.
	Init(ctx context.Context, cfg domain.LedgerConfig) (string, error)

	// ImportTransactions submits one account's entries. The backend
	// deduplicates on each entry's imported_id.
	ImportTransactions(ctx context.Context, token, accountID string, entries []domain.LedgerEntry, ledgerURL string) error
}

// RateSource resolves a currency code to its exchange rate against the
// ledger's base currency.
type RateSource interface {
	Rate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// RunMetrics records sync telemetry. Implementations must be safe for
// concurrent use; a failure to record must never affect the run.
type RunMetrics interface {
	RunStarted()
	RunSucceeded()
	RunFailed()
	RunCancelled()
	ObserveRunDuration(d time.Duration)
	TransactionsFetched(n int)
	TransactionsImported(n int)
	ImportFailed()
	FrameCaptured()
}
