package domain

import "time"

// defaultWindowDays is the fetch window when no explicit range is configured.
const defaultWindowDays = 30

// LedgerConfig is the budgeting backend's endpoint and credentials.
type LedgerConfig struct {
	URL            string
	Password       string
	BudgetID       string
	BudgetPassword string
}

// SyncConfig is everything one sync run needs. It is supplied atomically
// when a run starts, already decrypted, and never mutated during the run.
type SyncConfig struct {
	BankUsername string
	BankPassword string

	// AccountMapping maps the bank's arrangement IDs to ledger account IDs.
	// Transactions for unmapped arrangements are dropped.
	AccountMapping map[string]string

	Ledger LedgerConfig

	// Optional explicit fetch range. Zero values default to the last
	// 30 days through today.
	FromDate time.Time
	ToDate   time.Time
}

// DateRange resolves the fetch window against now.
func (c SyncConfig) DateRange(now time.Time) (from, to time.Time) {
	from, to = c.FromDate, c.ToDate
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultWindowDays)
	}
	return from, to
}
