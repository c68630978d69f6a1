package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"food-index/core/metrics"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StartupBuildID identifies the build the worker runs before signalling ready.
const StartupBuildID uint64 = 0

// Worker owns the index generations. It runs on the far side of a Conn and
// shares nothing with the gateway but encoded messages.
type Worker struct {
	conn   Conn
	loader DataLoader
	logger *zap.Logger

	mu          sync.RWMutex
	generations map[string]*Generation

	builds sync.WaitGroup
}

// NewWorker creates a worker answering on conn.
func NewWorker(conn Conn, loader DataLoader, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		conn:        conn,
		loader:      loader,
		logger:      logger,
		generations: make(map[string]*Generation),
	}
}

// Run builds every locale, signals ready and serves commands until an exit
// command arrives, the connection ends or ctx is done. A failed start-up build
// is reported with build id 0; the worker keeps serving so a later rebuild can
// bring it up.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		w.builds.Wait()
		_ = w.conn.Close()
	}()

	if err := w.build(ctx, StartupBuildID, nil); err != nil {
		w.logger.Error("Start-up build failed", zap.Error(err))
		w.reply(ctx, buildReply(StartupBuildID, err))
	} else {
		w.reply(ctx, readyReply())
		w.logger.Info("Index worker ready", zap.Int("locales", w.localeCount()))
	}

	for {
		data, err := w.conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive command: %w", err)
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			w.rejectUndecodable(ctx, data, err)
			continue
		}

		switch {
		case cmd.Type == typeCommand && cmd.Exit:
			w.logger.Info("Index worker exiting")
			return nil
		case cmd.Type == typeCommand && cmd.Rebuild && cmd.BuildID != nil:
			buildID, locales := *cmd.BuildID, cmd.Locales
			w.builds.Add(1)
			go func() {
				defer w.builds.Done()
				err := w.build(ctx, buildID, locales)
				if err != nil {
					w.logger.Error("Rebuild failed", zap.Uint64("build_id", buildID), zap.Strings("locales", locales), zap.Error(err))
				}
				w.reply(ctx, buildReply(buildID, err))
			}()
		case cmd.Type == typeQuery && cmd.QueryID != nil:
			w.reply(ctx, w.query(*cmd.QueryID, cmd.Parameters))
		default:
			w.rejectUndecodable(ctx, data, fmt.Errorf("unsupported command type %q", cmd.Type))
		}
	}
}

func (w *Worker) rejectUndecodable(ctx context.Context, data []byte, cause error) {
	buildID, queryID := recoverIDs(data)
	switch {
	case queryID != nil:
		w.reply(ctx, queryReply(*queryID, nil, cause))
	case buildID != nil:
		w.reply(ctx, buildReply(*buildID, cause))
	default:
		w.logger.Warn("Dropping undecodable command", zap.Error(cause), zap.ByteString("command", data))
	}
}

func (w *Worker) reply(ctx context.Context, r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		w.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	if err := w.conn.Send(ctx, data); err != nil && !errors.Is(err, ErrConnClosed) {
		w.logger.Error("Failed to send reply", zap.Error(err))
	}
}

func (w *Worker) query(queryID uint64, params *SearchParams) Reply {
	if params == nil {
		return queryReply(queryID, nil, errors.New("missing query parameters"))
	}
	w.mu.RLock()
	gen, ok := w.generations[params.LocaleID]
	w.mu.RUnlock()
	if !ok {
		return queryReply(queryID, nil, fmt.Errorf("%w: %s", ErrUnknownLocale, params.LocaleID))
	}
	results := gen.matcher.Search(*params)
	return queryReply(queryID, &results, nil)
}

// build fetches and indexes every requested locale, or every known locale when
// none is given, and installs them together only if all succeeded.
func (w *Worker) build(ctx context.Context, buildID uint64, locales []string) error {
	started := time.Now()
	if len(locales) == 0 {
		all, err := w.loader.Locales(ctx)
		if err != nil {
			return fmt.Errorf("list locales: %w", err)
		}
		locales = all
	}

	gens := make([]*Generation, len(locales))
	g, gctx := errgroup.WithContext(ctx)
	for i, localeID := range locales {
		g.Go(func() error {
			gen, err := w.buildLocale(gctx, buildID, localeID)
			if err != nil {
				return fmt.Errorf("locale %s: %w", localeID, err)
			}
			gens[i] = gen
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.install(buildID, gens)
	w.logger.Info("Build finished",
		zap.Uint64("build_id", buildID),
		zap.Int("locales", len(gens)),
		zap.Duration("duration", time.Since(started)),
	)
	return nil
}

func (w *Worker) buildLocale(ctx context.Context, buildID uint64, localeID string) (*Generation, error) {
	var (
		foods      []FoodRecord
		categories []CategoryRecord
		builders   map[string]FoodBuilderEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		foods, err = w.loader.FetchFoods(gctx, localeID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = w.loader.FetchCategories(gctx, localeID)
		return err
	})
	g.Go(func() (err error) {
		builders, err = w.loader.FetchFoodBuilders(gctx, localeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w.logger.Debug("Locale fetched",
		zap.String("locale", localeID),
		zap.String("foods", humanize.Comma(int64(len(foods)))),
		zap.String("categories", humanize.Comma(int64(len(categories)))),
		zap.String("food_builders", humanize.Comma(int64(len(builders)))),
	)

	return &Generation{
		LocaleID:     localeID,
		BuildID:      buildID,
		Foods:        foods,
		Categories:   categories,
		FoodBuilders: builders,
		BuiltAt:      time.Now(),
		matcher:      NewMatcher(foods, categories, builders),
	}, nil
}

// install swaps in each generation unless the locale already holds one from a
// later-issued build.
func (w *Worker) install(buildID uint64, gens []*Generation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, gen := range gens {
		if cur, ok := w.generations[gen.LocaleID]; ok && cur.BuildID > buildID {
			w.logger.Info("Generation superseded",
				zap.String("locale", gen.LocaleID),
				zap.Uint64("build_id", buildID),
				zap.Uint64("installed_build_id", cur.BuildID),
			)
			metrics.WorkerGenerations.WithLabelValues(gen.LocaleID, "superseded").Inc()
			continue
		}
		w.generations[gen.LocaleID] = gen
		metrics.WorkerGenerations.WithLabelValues(gen.LocaleID, "installed").Inc()
	}
}

// Generation returns the installed generation of a locale.
func (w *Worker) Generation(localeID string) (*Generation, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	gen, ok := w.generations[localeID]
	return gen, ok
}

func (w *Worker) localeCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.generations)
}
