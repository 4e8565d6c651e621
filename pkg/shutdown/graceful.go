package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// WithSignals cancels ctx on SIGINT or SIGTERM. The signal handler is
// released once ctx is done, so a second signal kills the process.
func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// Workers tracks the background loops of a service so shutdown can wait for
// them before closing what they use.
type Workers struct {
	log *slog.Logger
	wg  sync.WaitGroup
}

func NewWorkers(log *slog.Logger) *Workers {
	return &Workers{log: log}
}

// Go runs fn in its own goroutine. A returned error is logged under name.
func (w *Workers) Go(name string, fn func() error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := fn(); err != nil {
			w.log.Error("worker stopped with error", "worker", name, "err", err)
			return
		}
		w.log.Info("worker stopped", "worker", name)
	}()
}

// Wait blocks until every worker returned or timeout elapsed. It reports
// whether all of them finished.
func (w *Workers) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
