package reconciler

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/framez/internal/config"
	"github.com/weiawesome/framez/internal/service"
	"github.com/weiawesome/framez/internal/store"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// Reconciler periodically repairs the counters of the most read posts
// and users.
type Reconciler struct {
	hotKeys  store.HotKeyStore
	counters service.CounterService
	cfg      config.ReconcilerConfig
	quit     chan struct{}
	doneCh   chan struct{}
}

// New creates a new Reconciler.
func New(hotKeys store.HotKeyStore, counters service.CounterService, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		hotKeys:  hotKeys,
		counters: counters,
		cfg:      cfg,
		quit:     make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Result counts what one pass looked at and fixed.
type Result struct {
	Checked  int
	Repaired int
	Failed   int
}

// Reconcile runs one pass over the hottest posts, then users.
func (r *Reconciler) Reconcile(ctx context.Context) Result {
	l := pkglog.L()
	l.Debug().Msg("reconciler: starting hot-key reconciliation")

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = 100
	}

	var total Result
	for _, pass := range []struct {
		kind   store.Kind
		repair func(context.Context, string) (bool, error)
	}{
		{store.KindPost, r.counters.RepairPost},
		{store.KindUser, r.counters.RepairUser},
	} {
		ids, err := r.hotKeys.TakeTopHotKeys(ctx, pass.kind, topN)
		if err != nil {
			l.Error().Err(err).Str("kind", string(pass.kind)).Msg("reconciler: failed to take hot keys")
			continue
		}

		for _, id := range ids {
			total.Checked++
			repaired, err := pass.repair(ctx, id)
			switch {
			case errors.Is(err, service.ErrNotFound):
				// Deleted since it was read.
			case err != nil:
				total.Failed++
				l.Error().Err(err).Str("kind", string(pass.kind)).Str("id", id).Msg("reconciler: repair failed")
			case repaired:
				total.Repaired++
			}
		}
	}

	if total.Checked > 0 {
		l.Info().
			Int("checked", total.Checked).
			Int("repaired", total.Repaired).
			Int("failed", total.Failed).
			Msg("reconciler: hot-key reconciliation complete")
	}
	return total
}
