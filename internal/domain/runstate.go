package domain

import (
	"sync"
	"sync/atomic"
	"time"
)

// LogCapacity is the size of the rolling run log.
const LogCapacity = 50

// LogRing is a bounded FIFO log buffer. When full, the oldest entry is
// evicted. Entries are timestamped on append.
type LogRing struct {
	mu       sync.Mutex
	capacity int
	entries  []string
}

// NewLogRing creates a ring with the given capacity.
func NewLogRing(capacity int) *LogRing {
	return &LogRing{capacity: capacity}
}

// Append adds a timestamped entry, evicting the oldest if full.
func (r *LogRing) Append(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, time.Now().Format("15:04:05")+" - "+msg)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
}

// List returns a copy of the entries, oldest first.
func (r *LogRing) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// RunSnapshot is a point-in-time copy of the run state for callers.
type RunSnapshot struct {
	RunID     string     `json:"run_id"`
	Status    SyncStatus `json:"status"`
	LastError string     `json:"last_error"`
	Logs      []string   `json:"logs"`
}

// RunState is the single live state of the sync engine. One instance is
// created at process start and shared between the orchestrator (writer)
// and the HTTP front door (reader).
//
// The running flag gates run admission: it is flipped on by a successful
// Acquire, and off only after the run's resources are released, so a new
// run can never overlap a tearing-down one. It is the only synchronization
// the frame sampler needs (single writer, many readers).
type RunState struct {
	running atomic.Bool

	mu        sync.RWMutex
	runID     string
	status    SyncStatus
	lastError string
	frame     []byte

	logs *LogRing
}

// NewRunState creates an idle RunState with a bounded log ring.
func NewRunState() *RunState {
	return &RunState{
		status: StatusIdle,
		logs:   NewLogRing(LogCapacity),
	}
}

// Acquire attempts to flip the running flag on. It returns false if a
// run is already in flight.
func (s *RunState) Acquire() bool {
	return s.running.CompareAndSwap(false, true)
}

// Release flips the running flag off, making the state eligible for a
// new run. Call only after the run's resources are released.
func (s *RunState) Release() {
	s.running.Store(false)
}

// Running reports whether a run is in flight.
func (s *RunState) Running() bool {
	return s.running.Load()
}

// BeginRun records a fresh run ID and clears the previous run's error.
func (s *RunState) BeginRun(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.lastError = ""
}

// SetStatus records the current status.
func (s *RunState) SetStatus(status SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Status returns the current status.
func (s *RunState) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Fail records an error message and moves the status to error.
func (s *RunState) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
	s.status = StatusError
}

// SetFrame replaces the latest captured frame. Overwrite semantics:
// consumers always see the most recent frame or none.
func (s *RunState) SetFrame(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

// Frame returns the latest captured frame, or nil if none was captured yet.
func (s *RunState) Frame() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Log returns the run log ring.
func (s *RunState) Log() *LogRing {
	return s.logs
}

// Snapshot returns a point-in-time copy for status callers.
func (s *RunState) Snapshot() RunSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RunSnapshot{
		RunID:     s.runID,
		Status:    s.status,
		LastError: s.lastError,
		Logs:      s.logs.List(),
	}
}
