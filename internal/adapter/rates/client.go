package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/banksync/internal/domain"
)

// DefaultFeedURL is the public currency-rate feed.
const DefaultFeedURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/"

// Cache stores rates between runs. Implementations may be backed by
// Redis; a nil Cache disables caching entirely.
type Cache interface {
	Get(ctx context.Context, currency string) (string, error)
	Set(ctx context.Context, currency, rate string, ttl time.Duration) error
}

// Client resolves a currency code to its rate against the base currency
// from the public feed. It implements usecase.RateSource. Every failure
// is surfaced as a domain.RateLookupError: a silently wrong rate would
// corrupt amounts downstream.
type Client struct {
	feedURL      string
	baseCurrency string
	http         *http.Client
	cache        Cache
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewClient creates a rate client. baseCurrency is the ledger's display
// currency code (e.g. "VND"); cache may be nil.
func NewClient(feedURL, baseCurrency string, timeout time.Duration, cache Cache, cacheTTL time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		feedURL:      feedURL,
		baseCurrency: strings.ToLower(baseCurrency),
		http:         &http.Client{Timeout: timeout},
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Rate returns the exchange rate from currency to the base currency.
func (c *Client) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	key := strings.ToLower(currency)

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			if rate, perr := decimal.NewFromString(cached); perr == nil {
				c.logger.Debug().Str("currency", currency).Msg("rate served from cache")
				return rate, nil
			}
		}
	}

	rate, err := c.fetch(ctx, key)
	if err != nil {
		return decimal.Zero, &domain.RateLookupError{Currency: currency, Err: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, rate.String(), c.cacheTTL); err != nil {
			// Cache writes are best-effort.
			c.logger.Warn().Err(err).Str("currency", currency).Msg("rate cache write failed")
		}
	}
	return rate, nil
}

func (c *Client) fetch(ctx context.Context, key string) (decimal.Decimal, error) {
	var rate decimal.Decimal

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL+key+".min.json", nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return backoff.Permanent(fmt.Errorf("rate feed responded %d", resp.StatusCode))
		}

		// Body shape: {"<code>": {"vnd": 25000, ...}, "date": "..."}.
		var payload map[string]json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding rate feed: %w", err))
		}

		table, ok := payload[key]
		if !ok {
			return backoff.Permanent(fmt.Errorf("rate feed has no entry for %q", key))
		}

		var byCurrency map[string]decimal.Decimal
		if err := json.Unmarshal(table, &byCurrency); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding rate table: %w", err))
		}

		rate, ok = byCurrency[c.baseCurrency]
		if !ok {
			return backoff.Permanent(fmt.Errorf("rate feed has no %s rate for %q", c.baseCurrency, key))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}
