package domain

import "time"

// User is a front-door account that may hold sync settings.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Settings holds a user's stored sync configuration. Secret fields are
// decrypted by the repository layer; this type is always plaintext.
type Settings struct {
	UserID         string
	BankUsername   string
	BankPassword   string
	LedgerURL      string
	LedgerPassword string
	BudgetID       string
	BudgetPassword string
	AccountMapping map[string]string
	UpdatedAt      time.Time
}

// SyncConfig assembles the run configuration from stored settings.
func (s Settings) SyncConfig() SyncConfig {
	return SyncConfig{
		BankUsername:   s.BankUsername,
		BankPassword:   s.BankPassword,
		AccountMapping: s.AccountMapping,
		Ledger: LedgerConfig{
			URL:            s.LedgerURL,
			Password:       s.LedgerPassword,
			BudgetID:       s.BudgetID,
			BudgetPassword: s.BudgetPassword,
		},
	}
}
