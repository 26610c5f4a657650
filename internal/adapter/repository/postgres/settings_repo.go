package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/infrastructure/secret"
)

// SettingsRepository persists per-user sync settings. Credential columns
// are sealed before they touch the database and opened on the way out;
// callers only ever see plaintext domain.Settings.
type SettingsRepository struct {
	pool *pgxpool.Pool
	box  *secret.Box
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(pool *pgxpool.Pool, box *secret.Box) *SettingsRepository {
	return &SettingsRepository{pool: pool, box: box}
}

// Save upserts a user's settings
func (r *SettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	bankPassword, err := r.box.Seal(settings.BankPassword)
	if err != nil {
		return fmt.Errorf("failed to seal bank password: %w", err)
	}
	ledgerPassword, err := r.box.Seal(settings.LedgerPassword)
	if err != nil {
		return fmt.Errorf("failed to seal ledger password: %w", err)
	}
	budgetPassword, err := r.box.Seal(settings.BudgetPassword)
	if err != nil {
		return fmt.Errorf("failed to seal budget password: %w", err)
	}

	mapping, err := json.Marshal(settings.AccountMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal account mapping: %w", err)
	}

	query := `
		INSERT INTO settings (user_id, bank_username, bank_password, ledger_url, ledger_password, budget_id, budget_password, account_mapping, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			bank_username = EXCLUDED.bank_username,
			bank_password = EXCLUDED.bank_password,
			ledger_url = EXCLUDED.ledger_url,
			ledger_password = EXCLUDED.ledger_password,
			budget_id = EXCLUDED.budget_id,
			budget_password = EXCLUDED.budget_password,
			account_mapping = EXCLUDED.account_mapping,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		settings.UserID,
		settings.BankUsername,
		bankPassword,
		settings.LedgerURL,
		ledgerPassword,
		settings.BudgetID,
		budgetPassword,
		mapping,
		settings.UpdatedAt,
	)

	return err
}

// Get retrieves a user's settings
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	query := `
		SELECT user_id, bank_username, bank_password, ledger_url, ledger_password, budget_id, budget_password, account_mapping, updated_at
		FROM settings
		WHERE user_id = $1
	`

	var (
		settings domain.Settings
		mapping  []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.BankUsername,
		&settings.BankPassword,
		&settings.LedgerURL,
		&settings.LedgerPassword,
		&settings.BudgetID,
		&settings.BudgetPassword,
		&mapping,
		&settings.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}

	if settings.BankPassword, err = r.box.Open(settings.BankPassword); err != nil {
		return nil, fmt.Errorf("failed to open bank password: %w", err)
	}
	if settings.LedgerPassword, err = r.box.Open(settings.LedgerPassword); err != nil {
		return nil, fmt.Errorf("failed to open ledger password: %w", err)
	}
	if settings.BudgetPassword, err = r.box.Open(settings.BudgetPassword); err != nil {
		return nil, fmt.Errorf("failed to open budget password: %w", err)
	}

	if err := json.Unmarshal(mapping, &settings.AccountMapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account mapping: %w", err)
	}

	return &settings, nil
}
