package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/iho/banksync/internal/adapter/http/dto"
	"github.com/iho/banksync/internal/adapter/http/middleware"
	"github.com/iho/banksync/internal/domain"
)

// SettingsRepository is the persistence surface the settings handler needs.
type SettingsRepository interface {
	Save(ctx context.Context, settings *domain.Settings) error
	Get(ctx context.Context, userID string) (*domain.Settings, error)
}

// SettingsHandler handles sync settings endpoints
type SettingsHandler struct {
	settings SettingsRepository
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the caller's stored settings with secrets masked
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	settings, err := h.settings.Get(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(settings))
}

// Save upserts the caller's settings. Secret fields left empty keep
// their previously stored values.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	settings := &domain.Settings{
		UserID:         claims.UserID,
		BankUsername:   req.BankUsername,
		BankPassword:   req.BankPassword,
		LedgerURL:      req.LedgerURL,
		LedgerPassword: req.LedgerPassword,
		BudgetID:       req.BudgetID,
		BudgetPassword: req.BudgetPassword,
		AccountMapping: req.AccountMapping,
		UpdatedAt:      time.Now().UTC(),
	}

	if settings.BankPassword == "" || settings.LedgerPassword == "" {
		existing, err := h.settings.Get(r.Context(), claims.UserID)
		if err != nil && !errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusInternalServerError, "failed to load settings", "")
			return
		}
		if existing != nil {
			if settings.BankPassword == "" {
				settings.BankPassword = existing.BankPassword
			}
			if settings.LedgerPassword == "" {
				settings.LedgerPassword = existing.LedgerPassword
			}
			if settings.BudgetPassword == "" {
				settings.BudgetPassword = existing.BudgetPassword
			}
		}
	}

	if err := h.settings.Save(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(settings))
}
