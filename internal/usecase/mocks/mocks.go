package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/usecase"
)

// MockBrowserSession is a mock implementation of usecase.BrowserSession.
type MockBrowserSession struct {
	mu     sync.Mutex
	closed bool

	LoginFunc        func(ctx context.Context, username, password string, onOTPWait func()) error
	BearerTokenFunc  func(ctx context.Context) (string, error)
	CaptureFrameFunc func(ctx context.Context) ([]byte, error)
	AliveFunc        func() bool
	CloseFunc        func() error
}

func NewMockBrowserSession() *MockBrowserSession {
	return &MockBrowserSession{}
}

func (m *MockBrowserSession) Login(ctx context.Context, username, password string, onOTPWait func()) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, onOTPWait)
	}
	return nil
}

func (m *MockBrowserSession) BearerToken(ctx context.Context) (string, error) {
	if m.BearerTokenFunc != nil {
		return m.BearerTokenFunc(ctx)
	}
	return "mock-token", nil
}

func (m *MockBrowserSession) CaptureFrame(ctx context.Context) ([]byte, error) {
	if m.CaptureFrameFunc != nil {
		return m.CaptureFrameFunc(ctx)
	}
	return []byte("frame"), nil
}

func (m *MockBrowserSession) Alive() bool {
	if m.AliveFunc != nil {
		return m.AliveFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (m *MockBrowserSession) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Closed reports whether Close was called.
func (m *MockBrowserSession) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockBrowserFactory is a mock implementation of usecase.BrowserFactory.
type MockBrowserFactory struct {
	Session *MockBrowserSession

	NewSessionFunc func(ctx context.Context) (*MockBrowserSession, error)
}

func NewMockBrowserFactory() *MockBrowserFactory {
	return &MockBrowserFactory{Session: NewMockBrowserSession()}
}

func (m *MockBrowserFactory) NewSession(ctx context.Context) (usecase.BrowserSession, error) {
	if m.NewSessionFunc != nil {
		return m.NewSessionFunc(ctx)
	}
	return m.Session, nil
}

// MockTransactionFetcher is a mock implementation of usecase.TransactionFetcher.
type MockTransactionFetcher struct {
	FetchFunc func(ctx context.Context, token string, from, to time.Time) ([]domain.RawTransaction, error)
}

func NewMockTransactionFetcher() *MockTransactionFetcher {
	return &MockTransactionFetcher{}
}

func (m *MockTransactionFetcher) Fetch(ctx context.Context, token string, from, to time.Time) ([]domain.RawTransaction, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, token, from, to)
	}
	return nil, nil
}

// MockLedgerClient is a mock implementation of usecase.LedgerClient.
type MockLedgerClient struct {
	mu      sync.Mutex
	imports []ImportCall

	InitFunc               func(ctx context.Context, cfg domain.LedgerConfig) (string, error)
	ImportTransactionsFunc func(ctx context.Context, token, accountID string, entries []domain.LedgerEntry, ledgerURL string) error
}

// ImportCall records one ImportTransactions invocation.
type ImportCall struct {
	Token     string
	AccountID string
	Entries   []domain.LedgerEntry
	LedgerURL string
}

func NewMockLedgerClient() *MockLedgerClient {
	return &MockLedgerClient{}
}

func (m *MockLedgerClient) Init(ctx context.Context, cfg domain.LedgerConfig) (string, error) {
	if m.InitFunc != nil {
		return m.InitFunc(ctx, cfg)
	}
	return "ledger-token", nil
}

func (m *MockLedgerClient) ImportTransactions(ctx context.Context, token, accountID string, entries []domain.LedgerEntry, ledgerURL string) error {
	m.mu.Lock()
	m.imports = append(m.imports, ImportCall{Token: token, AccountID: accountID, Entries: entries, LedgerURL: ledgerURL})
	m.mu.Unlock()
	if m.ImportTransactionsFunc != nil {
		return m.ImportTransactionsFunc(ctx, token, accountID, entries, ledgerURL)
	}
	return nil
}

// Imports returns the recorded import calls.
func (m *MockLedgerClient) Imports() []ImportCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ImportCall, len(m.imports))
	copy(out, m.imports)
	return out
}

// MockIDGenerator returns a fixed ID.
type MockIDGenerator struct {
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return "run-test-1"
}

// MockRunMetrics is a no-op recorder that counts calls.
type MockRunMetrics struct {
	mu        sync.Mutex
	Started   int
	Succeeded int
	Failed    int
	Cancelled int
}

func NewMockRunMetrics() *MockRunMetrics { return &MockRunMetrics{} }

func (m *MockRunMetrics) RunStarted()   { m.mu.Lock(); m.Started++; m.mu.Unlock() }
func (m *MockRunMetrics) RunSucceeded() { m.mu.Lock(); m.Succeeded++; m.mu.Unlock() }
func (m *MockRunMetrics) RunFailed()    { m.mu.Lock(); m.Failed++; m.mu.Unlock() }
func (m *MockRunMetrics) RunCancelled() { m.mu.Lock(); m.Cancelled++; m.mu.Unlock() }

func (m *MockRunMetrics) ObserveRunDuration(time.Duration) {}
func (m *MockRunMetrics) TransactionsFetched(int)          {}
func (m *MockRunMetrics) TransactionsImported(int)         {}
func (m *MockRunMetrics) ImportFailed()                    {}
func (m *MockRunMetrics) FrameCaptured()                   {}

// Counts returns a copy of the run counters.
func (m *MockRunMetrics) Counts() (started, succeeded, failed, cancelled int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Started, m.Succeeded, m.Failed, m.Cancelled
}
