package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-index/core/loader"
	"food-index/core/logger"
	"food-index/core/metrics"
	"food-index/core/middleware/auth"
	"food-index/core/middleware/rayid"
	"food-index/core/pubsub"
	"food-index/core/storage"
	"food-index/feature/foods"
	"food-index/feature/foods/invalidation"
	"food-index/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "food-index/docs/swagger"
)

// @title Food Index API
// @version 1.0
// @description Localized food search with inherited food attributes.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the food index server",
	Long:  `Starts the index worker, the invalidation listener and the HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		// 1. Configuration, logger, database and cache
		rt, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		replica := rt.cfg.Server.Replica()
		logg = logg.With(zap.String("replica", replica))
		rt.logger = logg

		if _, err := rt.verifySchema(); err != nil {
			logg.Fatal("Schema verification failed", zap.Error(err))
		}
		if err := rt.resolver.CheckDefaults(ctx); err != nil {
			logg.Fatal("Attribute defaults unavailable", zap.Error(err))
		}
		rt.sharedStoreWarning()

		// 2. Metrics
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := metrics.Register(reg); err != nil {
			logg.Fatal("Failed to register metrics", zap.Error(err))
		}

		// 3. Index worker and gateway
		gateway, startErr := rt.startIndex(ctx)
		if gateway == nil {
			logg.Fatal("Failed to start index", zap.Error(startErr))
		}
		if startErr != nil {
			logg.Error("Start-up build failed, serving 503 until a rebuild succeeds", zap.Error(startErr))
		} else {
			logg.Info("Index ready")
		}

		// 4. Invalidation
		transport, err := pubsub.New(&rt.cfg.PubSub, "food-index-"+replica)
		if err != nil {
			logg.Fatal("Failed to connect pubsub", zap.Error(err))
		}
		bus := rt.newBus(transport, gateway, replica)
		if err := bus.Start(ctx); err != nil {
			logg.Fatal("Failed to subscribe to rebuild notices", zap.Error(err))
		}
		if startErr != nil {
			if err := rt.store.SetAdd(ctx, invalidation.PendingSetKey, invalidation.All); err != nil {
				logg.Error("Failed to queue start-up retry", zap.Error(err))
			}
		}
		reconciler := invalidation.NewReconciler(bus,
			time.Duration(rt.cfg.Reconcile.IntervalSeconds)*time.Second,
			rt.purger(),
			logger.Component(logg, "reconciler"),
		)
		go reconciler.Run(ctx)

		// 5. Thumbnails
		var thumbnails foods.Thumbnailer
		client, err := storage.NewClient(rt.cfg.Storage)
		if err != nil {
			logg.Warn("Storage unavailable, thumbnails disabled", zap.Error(err))
			client = nil
		} else {
			thumbnails = foods.NewThumbnails(client, rt.cfg.Storage, rt.cache, rt.cfg.Cache.ThumbnailsTTL(), logger.Component(logg, "thumbnails"))
		}

		// 6. Fiber app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		svc := foods.NewService(gateway, rt.repo, rt.resolver, thumbnails, bus, rt.cfg.Server, logg)
		mgr.Register(foods.NewFeature(svc, rt.cfg.Server.MCPEnabled))
		mgr.Register(integrity.NewFeature(client, rt.cfg.Storage, rt.db, rt.repo, logger.Component(logg, "integrity")))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public routes
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

		app.Use(auth.New(auth.Config{
			ApiKey: rt.cfg.Server.ApiKey,
			Skip:   []string{"/health", "/metrics", "/swagger"},
		}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if err := bus.Stop(); err != nil {
			logg.Warn("Failed to unsubscribe", zap.Error(err))
		}
		_ = transport.Close()
		if err := gateway.Close(); err != nil {
			logg.Warn("Failed to close index gateway", zap.Error(err))
		}
		stop()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
