package logger

import (
	"github.com/rs/zerolog"

	"github.com/iho/banksync/internal/domain"
)

// RingHook mirrors log messages at info level and above into a run's
// in-memory log ring so they can be served alongside the run status.
type RingHook struct {
	ring *domain.LogRing
}

// NewRingHook creates a hook feeding the given ring.
func NewRingHook(ring *domain.LogRing) *RingHook {
	return &RingHook{ring: ring}
}

// Run implements zerolog.Hook.
func (h *RingHook) Run(e *zerolog.Event, level zerolog.Level, message string) {
	if level < zerolog.InfoLevel || message == "" {
		return
	}
	h.ring.Append(message)
}
