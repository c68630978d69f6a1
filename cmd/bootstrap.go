package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"food-index/core/cache"
	"food-index/core/config"
	"food-index/core/database"
	"food-index/core/logger"
	"food-index/core/pubsub"
	"food-index/feature/foods/attributes"
	"food-index/feature/foods/index"
	"food-index/feature/foods/invalidation"
	"food-index/feature/foods/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the components shared by the commands.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	repo     *repository.Repository
	store    cache.Store
	cache    *cache.Cache
	resolver *attributes.Resolver
}

// bootstrap loads configuration and connects the database and cache.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return connect(cfg, logg)
}

func connect(cfg *config.Config, logg *zap.Logger) (*runtime, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := cache.NewStore(&cfg.Cache, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}
	if dbStore, ok := store.(*cache.DBStore); ok {
		if err := dbStore.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate cache tables: %w", err)
		}
	}

	repo := repository.New(db).WithLogger(logger.Component(logg, "repository"))
	c := cache.New(store)
	return &runtime{
		cfg:      cfg,
		logger:   logg,
		db:       db,
		repo:     repo,
		store:    store,
		cache:    c,
		resolver: attributes.NewResolver(repo, c, cfg.Cache.AttributesTTL(), logger.Component(logg, "attributes")),
	}, nil
}

// verifySchema fails when the food tables lack expected columns.
func (rt *runtime) verifySchema() (database.SchemaReport, error) {
	report, err := database.VerifySchema(rt.db, repository.ExpectedSchema())
	if err != nil {
		return report, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if !report.OK() {
		return report, fmt.Errorf("database schema is missing columns: %v", report.Missing)
	}
	return report, nil
}

func (rt *runtime) gatewayConfig() index.GatewayConfig {
	return index.GatewayConfig{
		CallTimeout:    time.Duration(rt.cfg.Index.CallTimeoutSeconds) * time.Second,
		RebuildTimeout: time.Duration(rt.cfg.Index.RebuildTimeoutSeconds) * time.Second,
	}
}

// startIndex starts the index worker in the configured mode and returns a
// gateway to it. The returned error reports a failed start-up build; the
// gateway is usable either way and becomes ready after a successful rebuild.
func (rt *runtime) startIndex(ctx context.Context) (*index.Gateway, error) {
	var conn index.Conn
	switch rt.cfg.Index.Mode {
	case "", "inprocess":
		gatewaySide, workerSide := index.Pipe()
		worker := index.NewWorker(workerSide, rt.repo, logger.Component(rt.logger, "index-worker"))
		go func() {
			if err := worker.Run(ctx); err != nil {
				rt.logger.Error("Index worker stopped", zap.Error(err))
			}
		}()
		conn = gatewaySide
	case "process":
		binary := rt.cfg.Index.WorkerBinary
		if binary == "" {
			self, err := os.Executable()
			if err != nil {
				return nil, fmt.Errorf("failed to locate worker binary: %w", err)
			}
			binary = self
		}
		pc, err := index.StartProcess(binary, indexWorkerCmd.Use)
		if err != nil {
			return nil, fmt.Errorf("failed to start index worker: %w", err)
		}
		rt.logger.Info("Index worker process started", zap.String("binary", binary))
		conn = pc
	default:
		return nil, fmt.Errorf("unsupported index mode: %s", rt.cfg.Index.Mode)
	}

	gateway := index.NewGateway(conn, rt.repo, logger.Component(rt.logger, "index-gateway"), rt.gatewayConfig())
	return gateway, gateway.Init(ctx)
}

// newBus wires the invalidation bus. rebuilder may be nil for commands that
// only publish.
func (rt *runtime) newBus(transport pubsub.Transport, rebuilder invalidation.Rebuilder, replica string) *invalidation.Bus {
	return invalidation.NewBus(rt.store, transport, rt.cfg.PubSub.Channel, rebuilder, replica, logger.Component(rt.logger, "invalidation"))
}

// purger returns the cache store when it can purge expired entries.
func (rt *runtime) purger() invalidation.Purger {
	if p, ok := rt.store.(invalidation.Purger); ok {
		return p
	}
	return nil
}

// sharedStoreWarning logs when cross-process commands run against a store
// other processes cannot see.
func (rt *runtime) sharedStoreWarning() {
	if rt.cfg.Cache.Driver != "database" {
		rt.logger.Warn("Cache driver is not shared; pending rebuilds are only visible to this process",
			zap.String("driver", rt.cfg.Cache.Driver))
	}
}
