package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/banksync/internal/domain"
)

type memCache struct {
	mu    sync.Mutex
	data  map[string]string
	gets  int
	sets  int
	fail  bool
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) Get(ctx context.Context, currency string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if v, ok := c.data[currency]; ok {
		return v, nil
	}
	return "", errors.New("miss")
}

func (c *memCache) Set(ctx context.Context, currency, rate string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.fail {
		return errors.New("cache down")
	}
	c.data[currency] = rate
	return nil
}

func TestClient_Rate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usd.min.json", r.URL.Path)
		w.Write([]byte(`{"date":"2024-01-01","usd":{"vnd":25000.5,"eur":0.9}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "VND", 5*time.Second, nil, 0, zerolog.Nop())

	rate, err := client.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "25000.5", rate.String())
}

func TestClient_RateCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"usd":{"vnd":24000}}`))
	}))
	defer server.Close()

	cache := newMemCache()
	client := NewClient(server.URL+"/", "VND", 5*time.Second, cache, time.Hour, zerolog.Nop())

	first, err := client.Rate(context.Background(), "USD")
	require.NoError(t, err)
	second, err := client.Rate(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, 1, calls, "second lookup must be served from cache")
	assert.Equal(t, 1, cache.sets)
}

func TestClient_CacheWriteFailureNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"usd":{"vnd":24000}}`))
	}))
	defer server.Close()

	cache := newMemCache()
	cache.fail = true
	client := NewClient(server.URL+"/", "VND", 5*time.Second, cache, time.Hour, zerolog.Nop())

	rate, err := client.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "24000", rate.String())
}

func TestClient_RateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "feed 404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "missing base currency",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"xyz":{"eur":1.1}}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL+"/", "VND", time.Second, nil, 0, zerolog.Nop())
			_, err := client.Rate(context.Background(), "XYZ")

			var rateErr *domain.RateLookupError
			require.True(t, errors.As(err, &rateErr), "expected RateLookupError, got %v", err)
			assert.Equal(t, "XYZ", rateErr.Currency)
		})
	}
}
