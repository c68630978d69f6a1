package invalidation

import (
	"context"
	"fmt"
	"time"

	"food-index/core/metrics"

	"go.uber.org/zap"
)

// Purger removes expired cache entries.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Readiness is implemented by rebuilders that know whether the local index
// serves searches.
type Readiness interface {
	Ready() bool
}

// Reconciler drains the pending set on a fixed interval, independent of
// notice delivery.
type Reconciler struct {
	bus      *Bus
	interval time.Duration
	purger   Purger
	logger   *zap.Logger
}

// NewReconciler creates a reconciler. purger may be nil.
func NewReconciler(bus *Bus, interval time.Duration, purger Purger, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{bus: bus, interval: interval, purger: purger, logger: logger}
}

// RunOnce performs one reconciliation pass.
func (r *Reconciler) RunOnce(ctx context.Context) ([]string, error) {
	if r.purger != nil {
		if n, err := r.purger.PurgeExpired(ctx); err != nil {
			r.logger.Warn("Cache purge failed", zap.Error(err))
		} else if n > 0 {
			r.logger.Debug("Expired cache entries purged", zap.Int64("count", n))
		}
	}
	drained, err := r.bus.Drain(ctx, "reconcile")
	if err != nil || len(drained) > 0 {
		return drained, err
	}
	return r.recover(ctx)
}

// recover rebuilds every locale when the local index is offline and nothing
// was pending. The shared set may have been drained by another replica, or the
// start-up build never succeeded.
func (r *Reconciler) recover(ctx context.Context) ([]string, error) {
	rd, ok := r.bus.rebuilder.(Readiness)
	if !ok || rd.Ready() {
		return nil, nil
	}
	r.logger.Warn("Index offline, rebuilding every locale")
	if err := r.bus.rebuilder.Rebuild(ctx, nil); err != nil {
		metrics.InvalidationDrains.WithLabelValues("reconcile", "failed").Inc()
		return []string{All}, fmt.Errorf("recover offline index: %w", err)
	}
	metrics.InvalidationDrains.WithLabelValues("reconcile", "recovered").Inc()
	return []string{All}, nil
}

// Run reconciles every interval until ctx is done. A non-positive interval
// disables the loop.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("Reconciliation loop disabled")
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("Reconciliation pass failed", zap.Error(err))
			}
		}
	}
}
