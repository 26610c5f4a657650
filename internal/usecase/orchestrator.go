package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/banksync/internal/domain"
)

// defaultFrameInterval is how often the telemetry sampler captures a frame.
const defaultFrameInterval = 500 * time.Millisecond

// Orchestrator sequences a sync run: browser login, transaction fetch,
// transformation and ledger import, with a concurrent frame sampler.
// At most one run is in flight at a time; admission is gated by the
// RunState's running flag.
type Orchestrator struct {
	state       *domain.RunState
	browser     BrowserFactory
	fetcher     TransactionFetcher
	transformer *Transformer
	ledger      LedgerClient
	ids         IDGenerator
	metrics     RunMetrics
	logger      zerolog.Logger

	frameInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option overrides an Orchestrator default.
type Option func(*Orchestrator)

// WithFrameInterval overrides the telemetry sampler interval.
func WithFrameInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.frameInterval = d }
}

// NewOrchestrator wires an Orchestrator. The caller owns the single
// RunState instance and the single-orchestrator-per-process constraint.
func NewOrchestrator(
	state *domain.RunState,
	browser BrowserFactory,
	fetcher TransactionFetcher,
	transformer *Transformer,
	ledger LedgerClient,
	ids IDGenerator,
	metrics RunMetrics,
	logger zerolog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		state:         state,
		browser:       browser,
		fetcher:       fetcher,
		transformer:   transformer,
		ledger:        ledger,
		ids:           ids,
		metrics:       metrics,
		logger:        logger,
		frameInterval: defaultFrameInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start launches a run in the background. It returns domain.ErrSyncRunning
// without touching the in-flight run if one is already active; it never
// blocks on run completion.
func (o *Orchestrator) Start(cfg domain.SyncConfig) error {
	if !o.state.Acquire() {
		return domain.ErrSyncRunning
	}

	runID := o.ids.Generate()
	o.state.BeginRun(runID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	o.cancel = cancel
	o.done = done
	o.mu.Unlock()

	go o.run(ctx, cfg, runID, done)
	return nil
}

// Stop requests best-effort cancellation of the in-flight run and waits
// for its teardown, so the browser session and its child resources are
// released before Stop returns. Status is forced to idle once
// acknowledged. Stopping when nothing runs is a no-op that still leaves
// the status idle.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.mu.Unlock()

	if cancel == nil {
		o.state.SetStatus(domain.StatusIdle)
		return nil
	}

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	o.state.SetStatus(domain.StatusIdle)
	return nil
}

// Status returns a point-in-time snapshot of the run state.
func (o *Orchestrator) Status() domain.RunSnapshot {
	return o.state.Snapshot()
}

// Frame returns the most recent telemetry frame, or nil.
func (o *Orchestrator) Frame() []byte {
	return o.state.Frame()
}

func (o *Orchestrator) run(ctx context.Context, cfg domain.SyncConfig, runID string, done chan struct{}) {
	started := time.Now()
	o.metrics.RunStarted()
	logger := o.logger.With().Str("run_id", runID).Logger()

	err := o.runSequence(ctx, cfg, logger)
	o.metrics.ObserveRunDuration(time.Since(started))

	switch {
	case err == nil:
		o.metrics.RunSucceeded()
	case domain.IsTeardown(err):
		// User-initiated stop or session teardown noise: not an error.
		o.setStatus(domain.StatusIdle, logger)
		o.metrics.RunCancelled()
		logger.Info().Msg("sync cancelled")
	default:
		o.state.Fail(err.Error())
		o.metrics.RunFailed()
		logger.Error().Err(err).Msg("sync failed")
	}

	// Resources are released; the gate reopens for the next run.
	o.state.Release()
	close(done)
}

func (o *Orchestrator) runSequence(ctx context.Context, cfg domain.SyncConfig, logger zerolog.Logger) error {
	o.setStatus(domain.StatusStarting, logger)

	session, err := o.browser.NewSession(ctx)
	if err != nil {
		return err
	}

	samplerStop := make(chan struct{})
	samplerDone := make(chan struct{})
	go o.sampleFrames(ctx, session, samplerStop, samplerDone)

	defer func() {
		// Teardown order: sampler first, then the browser session.
		// Each step proceeds even if the previous one failed to release.
		close(samplerStop)
		<-samplerDone
		if cerr := session.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("browser session close failed")
		}
	}()

	if err := o.login(ctx, session, cfg, logger); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return o.fetchAndImport(ctx, session, cfg, logger)
}

func (o *Orchestrator) login(ctx context.Context, session BrowserSession, cfg domain.SyncConfig, logger zerolog.Logger) error {
	o.setStatus(domain.StatusLoggingIn, logger)

	err := session.Login(ctx, cfg.BankUsername, cfg.BankPassword, func() {
		o.setStatus(domain.StatusWaitingOtp, logger)
	})
	if err != nil {
		return err
	}

	o.setStatus(domain.StatusLoggingIn, logger)
	logger.Info().Msg("logged in successfully")
	return nil
}

func (o *Orchestrator) fetchAndImport(ctx context.Context, session BrowserSession, cfg domain.SyncConfig, logger zerolog.Logger) error {
	o.setStatus(domain.StatusFetchingData, logger)

	token, err := session.BearerToken(ctx)
	if err != nil {
		return err
	}

	from, to := cfg.DateRange(time.Now())
	txns, err := o.fetcher.Fetch(ctx, token, from, to)
	if err != nil {
		return err
	}
	o.metrics.TransactionsFetched(len(txns))
	logger.Info().Int("count", len(txns)).Msg("fetched transactions")

	o.setStatus(domain.StatusSavingData, logger)

	batch, err := o.transformer.GroupByAccount(ctx, txns, cfg.AccountMapping)
	if err != nil {
		return err
	}
	logger.Info().Int("entries", batch.Size()).Int("accounts", len(batch)).Msg("converted transactions")

	ledgerToken, err := o.ledger.Init(ctx, cfg.Ledger)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerAuth, err)
	}
	if ledgerToken == "" {
		return domain.ErrLedgerAuth
	}

	// A single account's failure is recorded and the loop continues:
	// partial success is acceptable and must be visible in the logs.
	for _, account := range batch.Accounts() {
		entries := batch[account]
		if err := o.ledger.ImportTransactions(ctx, ledgerToken, account, entries, cfg.Ledger.URL); err != nil {
			if domain.IsTeardown(err) {
				return err
			}
			o.metrics.ImportFailed()
			logger.Error().Err(err).Str("account", account).Msg("import failed, continuing with remaining accounts")
			continue
		}
		o.metrics.TransactionsImported(len(entries))
		logger.Info().Str("account", account).Int("entries", len(entries)).Msg("imported transactions")
	}

	o.setStatus(domain.StatusSuccess, logger)
	return nil
}

// sampleFrames captures a low-quality frame every frameInterval into the
// single latest-frame slot. Capture failures are swallowed: telemetry is
// best-effort and never fails the sync. The running flag is what the
// sampler polls to know when to stop; the stop channel and context only
// shortcut the wait during teardown.
func (o *Orchestrator) sampleFrames(ctx context.Context, session BrowserSession, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if !o.state.Running() {
				return
			}
			if !session.Alive() {
				continue
			}
			frame, err := session.CaptureFrame(ctx)
			if err != nil {
				continue
			}
			o.state.SetFrame(frame)
			o.metrics.FrameCaptured()
		}
	}
}

func (o *Orchestrator) setStatus(status domain.SyncStatus, logger zerolog.Logger) {
	o.state.SetStatus(status)
	logger.Info().Msgf("status changed to: %s", status)
}
