package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/banksync/internal/domain"
)

const (
	initPath   = "/api/init"
	importPath = "/api/importTransactions?paramsInBody=true"
)

// Client talks to the budgeting backend's sync API. It implements
// usecase.LedgerClient. Transient network failures are retried with
// exponential backoff; non-2xx responses are not retried.
type Client struct {
	http   *http.Client
	logger zerolog.Logger

	maxElapsedTime time.Duration
}

// NewClient creates a ledger client.
func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		http:           &http.Client{Timeout: timeout},
		logger:         logger,
		maxElapsedTime: 15 * time.Second,
	}
}

type initRequest struct {
	Password       string `json:"password"`
	BudgetID       string `json:"budgetId"`
	BudgetPassword string `json:"budgetPassword,omitempty"`
}

type initResponse struct {
	Token string `json:"token"`
}

// Init authenticates against the backend and returns its import token.
// An error here aborts the run before any import is attempted.
func (c *Client) Init(ctx context.Context, cfg domain.LedgerConfig) (string, error) {
	body := initRequest{
		Password:       cfg.Password,
		BudgetID:       cfg.BudgetID,
		BudgetPassword: cfg.BudgetPassword,
	}

	var res initResponse
	if err := c.post(ctx, cfg.URL+initPath, "", body, &res); err != nil {
		c.logger.Error().Err(err).Msg("ledger init failed")
		return "", err
	}
	return res.Token, nil
}

// ImportTransactions submits one account's entries. Each entry's
// imported_id passes through unchanged so the backend can deduplicate
// repeated imports.
func (c *Client) ImportTransactions(ctx context.Context, token, accountID string, entries []domain.LedgerEntry, ledgerURL string) error {
	// The backend's RPC convention: positional arguments under "_".
	body := map[string]any{"_": []any{accountID, entries}}

	if err := c.post(ctx, ledgerURL+importPath, token, body, nil); err != nil {
		c.logger.Error().Err(err).Str("account", accountID).Msg("ledger import failed")
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, url, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return backoff.Permanent(fmt.Errorf("ledger responded %d: %s", resp.StatusCode, respBody))
		}
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
			}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxElapsedTime
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}
