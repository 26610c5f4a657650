package dto

import (
	"time"

	"github.com/iho/banksync/internal/domain"
)

// StatusResponse represents the current run state in API responses.
type StatusResponse struct {
	RunID     string   `json:"run_id,omitempty"`
	Status    string   `json:"status"`
	LastError string   `json:"last_error,omitempty"`
	Logs      []string `json:"logs"`
}

// StatusFromDomain converts a run snapshot to a response.
func StatusFromDomain(s domain.RunSnapshot) StatusResponse {
	logs := s.Logs
	if logs == nil {
		logs = []string{}
	}
	return StatusResponse{
		RunID:     s.RunID,
		Status:    string(s.Status),
		LastError: s.LastError,
		Logs:      logs,
	}
}

// UserInfo represents user information.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// TokenResponse represents a successful authentication.
type TokenResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// SettingsResponse represents stored settings in API responses. Secret
// fields are never echoed back; booleans report whether they are set.
type SettingsResponse struct {
	BankUsername      string            `json:"bank_username"`
	BankPasswordSet   bool              `json:"bank_password_set"`
	LedgerURL         string            `json:"ledger_url"`
	LedgerPasswordSet bool              `json:"ledger_password_set"`
	BudgetID          string            `json:"budget_id"`
	BudgetPasswordSet bool              `json:"budget_password_set"`
	AccountMapping    map[string]string `json:"account_mapping"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// SettingsFromDomain converts domain settings to a response.
func SettingsFromDomain(s *domain.Settings) *SettingsResponse {
	return &SettingsResponse{
		BankUsername:      s.BankUsername,
		BankPasswordSet:   s.BankPassword != "",
		LedgerURL:         s.LedgerURL,
		LedgerPasswordSet: s.LedgerPassword != "",
		BudgetID:          s.BudgetID,
		BudgetPasswordSet: s.BudgetPassword != "",
		AccountMapping:    s.AccountMapping,
		UpdatedAt:         s.UpdatedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
