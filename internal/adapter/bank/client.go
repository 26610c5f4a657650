package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/banksync/internal/domain"
)

const (
	transactionsPath = "/api/transaction-manager/client-api/v2/transactions"
	dateFormat       = "2006-01-02"

	// maxErrorBody bounds how much of a failed response is kept for the
	// error message.
	maxErrorBody = 4 << 10
)

// Config holds the acquisition client's wire parameters.
type Config struct {
	// BaseURL is the bank's online-banking origin.
	BaseURL string

	// UserAgent must match the browser session's user agent: the API
	// fingerprints clients.
	UserAgent string

	// PageSize bounds how many transactions one request returns.
	PageSize int

	Timeout time.Duration
}

// Client fetches transaction history directly from the bank's REST API
// using the bearer token extracted from the browser session. It
// implements usecase.TransactionFetcher.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates an acquisition client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Fetch issues one authenticated transaction-history request for the
// date range. A non-200 response is a hard error carrying the status and
// body; an unrecognized response shape degrades to an empty slice with
// a warning.
func (c *Client) Fetch(ctx context.Context, token string, from, to time.Time) ([]domain.RawTransaction, error) {
	query := url.Values{}
	query.Set("bookingDateGreaterThan", from.Format(dateFormat))
	query.Set("bookingDateLessThan", to.Format(dateFormat))
	query.Set("from", "0")
	query.Set("size", strconv.Itoa(c.cfg.PageSize))
	query.Set("orderBy", "bookingDate")
	query.Set("direction", "DESC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+transactionsPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building transaction request: %w", err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.7,vi;q=0.3")
	req.Header.Set("Referer", c.cfg.BaseURL+"/")
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Info().
		Str("from", from.Format(dateFormat)).
		Str("to", to.Format(dateFormat)).
		Msg("fetching transactions")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transaction request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading transaction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	return c.parse(body)
}

func (c *Client) parse(body []byte) ([]domain.RawTransaction, error) {
	list, ok := extractList(body)
	if !ok {
		c.logger.Warn().Msg("could not find a list of transactions in the response")
		return nil, nil
	}

	var txns []domain.RawTransaction
	if err := json.Unmarshal(list, &txns); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	return txns, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
