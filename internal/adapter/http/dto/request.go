package dto

import "errors"

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the registration request.
func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the login request.
func (r *LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return errors.New("username and password are required")
	}
	return nil
}

// SettingsRequest represents a settings save request. Secret fields left
// empty keep their stored values.
type SettingsRequest struct {
	BankUsername   string            `json:"bank_username"`
	BankPassword   string            `json:"bank_password"`
	LedgerURL      string            `json:"ledger_url"`
	LedgerPassword string            `json:"ledger_password"`
	BudgetID       string            `json:"budget_id"`
	BudgetPassword string            `json:"budget_password"`
	AccountMapping map[string]string `json:"account_mapping"`
}

// Validate validates the settings request.
func (r *SettingsRequest) Validate() error {
	if r.BankUsername == "" {
		return errors.New("bank_username is required")
	}
	if r.LedgerURL == "" {
		return errors.New("ledger_url is required")
	}
	if r.BudgetID == "" {
		return errors.New("budget_id is required")
	}
	if len(r.AccountMapping) == 0 {
		return errors.New("account_mapping must not be empty")
	}
	return nil
}

// StartSyncRequest represents an optional date-range override for a run.
type StartSyncRequest struct {
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
}
