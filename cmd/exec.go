package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"valetdesk/config"
	"valetdesk/internal/handlers"
	"valetdesk/internal/repository"
	"valetdesk/internal/services"
	"valetdesk/monitoring"
	"valetdesk/security"
	"valetdesk/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		client, err := utils.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = client
		defer redisClient.Close()
	}

	monitor := monitoring.NewMonitor()
	publisher := newPublisher(cfg)

	// The SQL store needs the app database, which only exists after bootstrap
	var itemService *services.ItemService
	app.OnBootstrap().BindFunc(func(e *core.BootstrapEvent) error {
		if err := e.Next(); err != nil {
			return err
		}

		store, err := newStore(ctx, e.App, cfg, redisClient)
		if err != nil {
			return err
		}
		itemService = services.NewItemService(store, publisher, monitor)
		slog.Info("Ticket store ready", "driver", cfg.StoreDriver)
		return nil
	})

	app.RootCmd.AddCommand(newSeedCommand(func() *services.ItemService { return itemService }))

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if cfg.SeedSamples {
			inserted, err := itemService.SeedSamples(ctx)
			if err != nil {
				return fmt.Errorf("seed sample tickets: %w", err)
			}
			slog.Info("Seeded sample tickets", "inserted", inserted)
		} else if err := itemService.SyncMetrics(ctx); err != nil {
			slog.Warn("Could not read ticket count", "error", err)
		}

		if cfg.EnableMetrics {
			go func() {
				if err := monitoring.Serve(ctx, ":"+cfg.MetricsPort, cfg.ShutdownTimeout); err != nil {
					slog.Error("Metrics server stopped", "error", err)
				}
			}()
		}

		se.Router.BindFunc(monitor.RequestMetrics)
		if cfg.BlockBots {
			se.Router.BindFunc(security.AntiBot)
		}
		if limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute); limiter.Enabled() {
			se.Router.BindFunc(limiter.RateLimit)
		}

		handlers.RegisterRoutes(se.Router, handlers.NewItemHandler(itemService))

		log.Println("Server routes registered")

		return se.Next()
	})

	// Start server
	return app.Start()
}

func newStore(ctx context.Context, app core.App, cfg *config.Config, redisClient *redis.Client) (repository.ItemStore, error) {
	switch cfg.StoreDriver {
	case repository.DriverSQL:
		store := repository.NewSQLStore(app.DB())
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case repository.DriverRedis:
		return repository.NewRedisStore(redisClient), nil
	default:
		return repository.NewMemoryStore(), nil
	}
}

func newPublisher(cfg *config.Config) services.Publisher {
	if !cfg.PubNubEnabled() {
		slog.Info("PubNub keys not configured, realtime ticket events disabled")
		return services.NopPublisher{}
	}

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pnConfig.UUID = "valetdesk-api"

	pn := pubnub.NewPubNub(pnConfig)

	return services.NewBreakerPublisher(
		services.NewPubNubPublisher(pn, cfg.PubNubChannel),
		utils.NewCircuitBreaker("pubnub"),
	)
}

func newSeedCommand(itemService func() *services.ItemService) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample parking tickets into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			inserted, err := itemService().SeedSamples(cmd.Context())
			if err != nil {
				return err
			}
			if inserted == 0 {
				cmd.Println("Store already holds tickets, nothing seeded")
				return nil
			}
			cmd.Printf("Seeded %d sample tickets\n", inserted)
			return nil
		},
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
