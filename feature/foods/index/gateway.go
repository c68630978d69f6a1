package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"food-index/core/metrics"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// GatewayConfig bounds the gateway's calls. A zero timeout leaves only ctx.
type GatewayConfig struct {
	CallTimeout    time.Duration
	RebuildTimeout time.Duration
}

type callResult struct {
	reply Reply
	err   error
}

// Gateway is the caller-facing handle on the index worker. It owns readiness
// and correlates asynchronous replies with their calls by id.
type Gateway struct {
	conn    Conn
	locales LocaleResolver
	logger  *zap.Logger
	cfg     GatewayConfig

	ready     atomic.Bool
	closed    atomic.Bool
	nextQuery atomic.Uint64
	nextBuild atomic.Uint64

	queries *xsync.MapOf[uint64, chan callResult]
	builds  *xsync.MapOf[uint64, chan callResult]

	startup    chan Reply
	startOnce  sync.Once
	closeOnce  sync.Once
	readerDone chan struct{}
}

// NewGateway creates a gateway talking to a worker over conn. Call Init before use.
func NewGateway(conn Conn, locales LocaleResolver, logger *zap.Logger, cfg GatewayConfig) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		conn:       conn,
		locales:    locales,
		logger:     logger,
		cfg:        cfg,
		queries:    xsync.NewMapOf[uint64, chan callResult](),
		builds:     xsync.NewMapOf[uint64, chan callResult](),
		startup:    make(chan Reply, 1),
		readerDone: make(chan struct{}),
	}
}

// Init starts reading worker replies and waits for the worker's start-up build.
func (g *Gateway) Init(ctx context.Context) error {
	g.startOnce.Do(func() { go g.readLoop() })

	if g.cfg.RebuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.RebuildTimeout)
		defer cancel()
	}

	select {
	case r := <-g.startup:
		return g.started(r)
	case <-g.readerDone:
		select {
		case r := <-g.startup:
			return g.started(r)
		default:
		}
		return ErrWorkerExited
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("waiting for worker start-up: %w", ErrCallTimeout)
		}
		return ctx.Err()
	}
}

func (g *Gateway) started(r Reply) error {
	if !r.Ready {
		return &RebuildError{BuildID: StartupBuildID, Msg: r.Error}
	}
	return nil
}

// Ready reports whether searches are accepted.
func (g *Gateway) Ready() bool {
	return g.ready.Load()
}

// PendingCalls is the number of calls waiting for a worker reply.
func (g *Gateway) PendingCalls() int {
	return g.queries.Size() + g.builds.Size()
}

func (g *Gateway) setReady(v bool) {
	g.ready.Store(v)
	if v {
		metrics.IndexReady.Set(1)
	} else {
		metrics.IndexReady.Set(0)
	}
}

// Rebuild asks the worker to rebuild the given locales, or all of them when
// localeIDs is empty. A failed rebuild takes the whole index offline until a
// later rebuild succeeds and is returned as a *RebuildError. Searches keep
// being served from the previous generation while the rebuild runs.
func (g *Gateway) Rebuild(ctx context.Context, localeIDs []string) error {
	if g.closed.Load() {
		return ErrGatewayClosed
	}

	var locales []string
	if len(localeIDs) > 0 {
		canonical, err := g.locales.Canonicalize(ctx, localeIDs)
		if err != nil {
			return err
		}
		locales = canonical
	}

	id := g.nextBuild.Add(1)
	started := time.Now()
	res, err := g.roundTrip(ctx, g.builds, id, rebuildCommand(id, locales), g.cfg.RebuildTimeout)
	metrics.GatewayCallDuration.WithLabelValues("rebuild").Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.GatewayCalls.WithLabelValues("rebuild", "error").Inc()
		return fmt.Errorf("rebuild %d: %w", id, err)
	}

	if !res.Success {
		g.setReady(false)
		metrics.GatewayCalls.WithLabelValues("rebuild", "failed").Inc()
		rerr := &RebuildError{BuildID: id, Locales: locales, Msg: res.Error}
		g.logger.Error("Rebuild failed, index offline", zap.Error(rerr))
		return rerr
	}

	g.setReady(true)
	metrics.GatewayCalls.WithLabelValues("rebuild", "ok").Inc()
	g.logger.Info("Rebuild finished",
		zap.Uint64("build_id", id),
		zap.Strings("locales", locales),
		zap.Duration("duration", time.Since(started)),
	)
	return nil
}

// Search runs a query against the worker's current generation.
func (g *Gateway) Search(ctx context.Context, params SearchParams) (*SearchResults, error) {
	if g.closed.Load() {
		return nil, ErrGatewayClosed
	}
	if !g.Ready() {
		return nil, ErrIndexNotReady
	}

	id := g.nextQuery.Add(1)
	started := time.Now()
	res, err := g.roundTrip(ctx, g.queries, id, queryCommand(id, params), g.cfg.CallTimeout)
	metrics.GatewayCallDuration.WithLabelValues("search").Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.GatewayCalls.WithLabelValues("search", "error").Inc()
		return nil, err
	}
	if !res.Success {
		metrics.GatewayCalls.WithLabelValues("search", "failed").Inc()
		return nil, &RemoteError{QueryID: id, Msg: res.Error}
	}

	metrics.GatewayCalls.WithLabelValues("search", "ok").Inc()
	if res.Results == nil {
		return &SearchResults{Foods: []FoodHeader{}, Categories: []CategoryHeader{}}, nil
	}
	return res.Results, nil
}

// Close tells the worker to exit and fails every outstanding call with
// ErrGatewayClosed.
func (g *Gateway) Close() error {
	var err error
	g.closeOnce.Do(func() {
		g.closed.Store(true)
		g.setReady(false)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if data, mErr := json.Marshal(exitCommand()); mErr == nil {
			if sErr := g.conn.Send(ctx, data); sErr != nil {
				g.logger.Warn("Failed to send exit command", zap.Error(sErr))
			}
		}

		g.abortAll(ErrGatewayClosed)
		err = g.conn.Close()
	})
	return err
}

// roundTrip registers a one-shot reply channel under id, sends cmd and waits.
// Whoever removes the entry from pending first, the reader or this call on
// expiry, owns the outcome.
func (g *Gateway) roundTrip(ctx context.Context, pending *xsync.MapOf[uint64, chan callResult], id uint64, cmd Command, timeout time.Duration) (Reply, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return Reply{}, fmt.Errorf("encode command: %w", err)
	}

	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan callResult, 1)
	pending.Store(id, ch)
	metrics.GatewayPending.Inc()
	defer metrics.GatewayPending.Dec()

	if g.closed.Load() {
		if _, ok := pending.LoadAndDelete(id); ok {
			return Reply{}, ErrGatewayClosed
		}
		return wait(ch)
	}

	if err := g.conn.Send(ctx, data); err != nil {
		if _, ok := pending.LoadAndDelete(id); ok {
			if errors.Is(err, ErrConnClosed) {
				return Reply{}, ErrGatewayClosed
			}
			return Reply{}, fmt.Errorf("send command: %w", err)
		}
		return wait(ch)
	}

	select {
	case r := <-ch:
		return r.reply, r.err
	case <-ctx.Done():
		if _, ok := pending.LoadAndDelete(id); !ok {
			return wait(ch)
		}
		if parent.Err() != nil {
			return Reply{}, parent.Err()
		}
		return Reply{}, ErrCallTimeout
	}
}

func wait(ch chan callResult) (Reply, error) {
	r := <-ch
	return r.reply, r.err
}

func (g *Gateway) readLoop() {
	defer close(g.readerDone)
	for {
		data, err := g.conn.Receive(context.Background())
		if err != nil {
			if !g.closed.Load() {
				g.logger.Error("Index worker connection lost", zap.Error(err))
				g.setReady(false)
				g.abortAll(ErrWorkerExited)
			}
			return
		}

		var r Reply
		if err := json.Unmarshal(data, &r); err != nil {
			g.logger.Warn("Dropping undecodable worker reply", zap.Error(err), zap.ByteString("reply", data))
			continue
		}
		g.dispatch(r)
	}
}

func (g *Gateway) dispatch(r Reply) {
	switch {
	case r.Ready:
		g.signalStartup(r)
	case r.BuildCommandID != nil:
		id := *r.BuildCommandID
		if ch, ok := g.builds.LoadAndDelete(id); ok {
			ch <- callResult{reply: r}
			return
		}
		if id == StartupBuildID {
			g.signalStartup(r)
			return
		}
		g.logger.Warn("Reply for unknown build", zap.Uint64("build_id", id))
	case r.QueryID != nil:
		if ch, ok := g.queries.LoadAndDelete(*r.QueryID); ok {
			ch <- callResult{reply: r}
			return
		}
		g.logger.Warn("Reply for unknown query", zap.Uint64("query_id", *r.QueryID))
	default:
		g.logger.Warn("Worker reply without correlation id")
	}
}

// signalStartup applies the start-up build outcome whether or not Init is
// still waiting for it. The worker sends it before reading any command, so no
// rebuild reply can precede it.
func (g *Gateway) signalStartup(r Reply) {
	if r.Ready {
		g.setReady(true)
		g.logger.Info("Food index ready")
	} else {
		g.setReady(false)
		g.logger.Error("Start-up build failed", zap.String("error", r.Error))
	}
	select {
	case g.startup <- r:
	default:
	}
}

func (g *Gateway) abortAll(err error) {
	for _, pending := range []*xsync.MapOf[uint64, chan callResult]{g.queries, g.builds} {
		pending.Range(func(id uint64, _ chan callResult) bool {
			if ch, ok := pending.LoadAndDelete(id); ok {
				ch <- callResult{err: err}
			}
			return true
		})
	}
}
