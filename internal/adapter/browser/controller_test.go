package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/banksync/internal/domain"
)

func TestSessionClassify(t *testing.T) {
	liveCtx := context.Background()
	closedCtx, cancel := context.WithCancel(context.Background())
	cancel()

	driverErr := errors.New("websocket: close 1006")

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want error
	}{
		{"cancellation passes through", liveCtx, context.Canceled, context.Canceled},
		{"driver noise on closed session", closedCtx, driverErr, domain.ErrSessionClosed},
		{"driver error on live session", liveCtx, driverErr, driverErr},
		{"timeout on closed session stays timeout", closedCtx, context.DeadlineExceeded, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &session{ctx: tt.ctx}
			if got := s.classify(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSessionAlive(t *testing.T) {
	closedCtx, cancel := context.WithCancel(context.Background())
	cancel()

	if (&session{ctx: context.Background()}).Alive() == false {
		t.Fatal("expected live session to report alive")
	}
	if (&session{ctx: closedCtx}).Alive() {
		t.Fatal("expected closed session to report not alive")
	}
}
