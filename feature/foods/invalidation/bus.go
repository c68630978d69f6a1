package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"food-index/core/cache"
	"food-index/core/metrics"
	"food-index/core/pubsub"
	"food-index/feature/foods/index"

	"go.uber.org/zap"
)

const (
	// PendingSetKey names the shared set of locales waiting for a rebuild.
	PendingSetKey = "food-index:pending-rebuilds"
	// All is the pending set sentinel requesting a rebuild of every locale.
	All = "all"
)

// Rebuilder rebuilds the index for the given locales, or all of them when empty.
type Rebuilder interface {
	Rebuild(ctx context.Context, localeIDs []string) error
}

// Notice is the payload published after a data change. Receivers drain the
// pending set rather than trusting the payload.
type Notice struct {
	Replica string   `json:"replica"`
	Locales []string `json:"locales"`
}

// Bus records pending rebuilds in a shared set and signals every replica to
// drain it.
type Bus struct {
	store     cache.Store
	transport pubsub.Transport
	channel   string
	rebuilder Rebuilder
	replica   string
	logger    *zap.Logger

	mu  sync.Mutex
	sub pubsub.Subscription
}

// NewBus creates a bus publishing on channel.
func NewBus(store cache.Store, transport pubsub.Transport, channel string, rebuilder Rebuilder, replica string, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		store:     store,
		transport: transport,
		channel:   channel,
		rebuilder: rebuilder,
		replica:   replica,
		logger:    logger,
	}
}

// Notify marks locales for rebuild, or every locale when none is given, and
// publishes a notice. The pending set is written first so a lost notice is
// still picked up by reconciliation.
func (b *Bus) Notify(ctx context.Context, localeIDs ...string) error {
	members := localeIDs
	if len(members) == 0 {
		members = []string{All}
	}
	if err := b.store.SetAdd(ctx, PendingSetKey, members...); err != nil {
		return fmt.Errorf("mark pending rebuild: %w", err)
	}

	payload, err := json.Marshal(Notice{Replica: b.replica, Locales: members})
	if err != nil {
		return err
	}
	if err := b.transport.Publish(ctx, b.channel, payload); err != nil {
		// The pending set already holds the locales; reconciliation will drain them.
		b.logger.Warn("Failed to publish rebuild notice", zap.Strings("locales", members), zap.Error(err))
	}
	return nil
}

// Start subscribes to notices. Each notice drains the pending set.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return nil
	}
	sub, err := b.transport.Subscribe(ctx, b.channel, func(ctx context.Context, payload []byte) {
		var n Notice
		if err := json.Unmarshal(payload, &n); err != nil {
			b.logger.Warn("Undecodable rebuild notice", zap.Error(err))
		}
		b.logger.Debug("Rebuild notice received", zap.String("from", n.Replica), zap.Strings("locales", n.Locales))
		if _, err := b.Drain(ctx, "notice"); err != nil {
			b.logger.Error("Drain after notice failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	b.sub = sub
	return nil
}

// Stop unsubscribes from notices.
func (b *Bus) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub == nil {
		return nil
	}
	err := b.sub.Unsubscribe()
	b.sub = nil
	return err
}

// Pending lists the locales waiting for a rebuild without draining them.
func (b *Bus) Pending(ctx context.Context) ([]string, error) {
	members, err := b.store.SetMembers(ctx, PendingSetKey)
	if err != nil {
		return nil, err
	}
	slices.Sort(members)
	return members, nil
}

// Drain atomically takes the pending set and rebuilds it. It returns the
// drained locales; nil means there was nothing to do. When the rebuild fails
// the locales go back to the pending set for the next reconciliation, unless
// they are unknown. A batch failing on an unknown locale is retried one locale
// at a time so the known ones still converge.
func (b *Bus) Drain(ctx context.Context, trigger string) ([]string, error) {
	members, err := b.store.SetDrain(ctx, PendingSetKey)
	if err != nil {
		metrics.InvalidationDrains.WithLabelValues(trigger, "error").Inc()
		return nil, fmt.Errorf("drain pending rebuilds: %w", err)
	}
	if len(members) == 0 {
		metrics.InvalidationDrains.WithLabelValues(trigger, "empty").Inc()
		return nil, nil
	}
	slices.Sort(members)

	var locales []string
	if !slices.Contains(members, All) {
		locales = members
	}

	err = b.rebuilder.Rebuild(ctx, locales)
	if errors.Is(err, index.ErrUnknownLocale) && len(locales) > 1 {
		b.logger.Warn("Pending rebuilds include an unknown locale, rebuilding one by one",
			zap.Strings("locales", locales), zap.Error(err))
		err = b.rebuildEach(ctx, trigger, locales)
		if err != nil {
			metrics.InvalidationDrains.WithLabelValues(trigger, "failed").Inc()
			return members, err
		}
		metrics.InvalidationDrains.WithLabelValues(trigger, "rebuilt").Inc()
		return members, nil
	}
	if err != nil {
		metrics.InvalidationDrains.WithLabelValues(trigger, "failed").Inc()
		b.logger.Error("Rebuild after drain failed",
			zap.String("trigger", trigger),
			zap.Strings("locales", members),
			zap.Error(err),
		)
		if !errors.Is(err, index.ErrUnknownLocale) {
			if rErr := b.store.SetAdd(context.WithoutCancel(ctx), PendingSetKey, members...); rErr != nil {
				b.logger.Error("Failed to restore pending rebuilds", zap.Error(rErr))
			}
		}
		return members, err
	}

	metrics.InvalidationDrains.WithLabelValues(trigger, "rebuilt").Inc()
	b.logger.Info("Pending rebuilds drained", zap.String("trigger", trigger), zap.Strings("locales", members))
	return members, nil
}

// rebuildEach rebuilds locales one at a time. Unknown locales are dropped;
// the others go back to the pending set when their rebuild fails.
func (b *Bus) rebuildEach(ctx context.Context, trigger string, locales []string) error {
	var errs []error
	for _, id := range locales {
		err := b.rebuilder.Rebuild(ctx, []string{id})
		switch {
		case err == nil:
		case errors.Is(err, index.ErrUnknownLocale):
			b.logger.Warn("Dropping pending rebuild of unknown locale", zap.String("locale", id))
		default:
			b.logger.Error("Rebuild after drain failed",
				zap.String("trigger", trigger),
				zap.String("locale", id),
				zap.Error(err),
			)
			if rErr := b.store.SetAdd(context.WithoutCancel(ctx), PendingSetKey, id); rErr != nil {
				b.logger.Error("Failed to restore pending rebuild", zap.String("locale", id), zap.Error(rErr))
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
