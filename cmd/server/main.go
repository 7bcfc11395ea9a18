// @title         finance API
// @version       1.0
// @description   Personal finance service: accounts, authentication and a per-account income/expense ledger.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token. Both "Bearer <JWT>" and "<JWT>" are accepted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	_ "github.com/artem13815/finance/docs"

	// internal imports
	httpapi "github.com/artem13815/finance/api/http"
	"github.com/artem13815/finance/api/http/handlers"
	"github.com/artem13815/finance/api/http/middleware"
	"github.com/artem13815/finance/pkg/auth"
	"github.com/artem13815/finance/pkg/config"
	"github.com/artem13815/finance/pkg/events"
	amqpevents "github.com/artem13815/finance/pkg/events/amqp"
	kafkaevents "github.com/artem13815/finance/pkg/events/kafka"
	"github.com/artem13815/finance/pkg/health"
	"github.com/artem13815/finance/pkg/health/checkers"
	"github.com/artem13815/finance/pkg/ledger"
	"github.com/artem13815/finance/pkg/logging"
	"github.com/artem13815/finance/pkg/repository/memory"
	pgrepo "github.com/artem13815/finance/pkg/repository/postgres"
	redisrepo "github.com/artem13815/finance/pkg/repository/redis"
	"github.com/artem13815/finance/pkg/security/jwt"
	"github.com/artem13815/finance/pkg/security/password"
	"github.com/artem13815/finance/pkg/storage/postgres"
)

func main() {
	// Load configuration from env/.env and CONFIG_FILE
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})
	logging.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", logging.FieldError, err)
		os.Exit(1)
	}
}

type backend struct {
	accounts auth.AccountRepository
	entries  ledger.Repository
	refresh  auth.RefreshTokenStore
	checkers []health.Checker
	closers  []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func run(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	// Token issuer fails fast on a weak secret.
	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	be, err := openBackend(ctx, cfg, log.WithComponent(logging.ComponentStorage))
	if err != nil {
		return err
	}
	defer be.close()

	eventsLog := log.WithComponent(logging.ComponentEvents)
	publisher, err := openPublisher(cfg, be)
	if err != nil {
		return err
	}
	eventsLog.Info("event publisher ready", "events_backend", cfg.EventsBackend)
	defer func() {
		if err := publisher.Close(); err != nil {
			eventsLog.Warn("close event publisher", logging.FieldError, err)
		}
	}()

	// Wire dependencies (Clean Architecture)
	hasher := password.NewHasher(cfg.BcryptCost)
	authUC := auth.NewAuthService(be.accounts, be.refresh, issuer, hasher, cfg.RefreshTTL, log)
	profileUC := auth.NewProfileService(be.accounts, be.refresh, log)
	ledgerUC := ledger.NewService(be.entries, publisher, log)

	routes := httpapi.Routes{
		Auth:         handlers.NewAuthHandler(authUC),
		Users:        handlers.NewUserHandler(profileUC),
		Transactions: handlers.NewTransactionHandler(ledgerUC),
		Health:       handlers.NewHealthHandler(health.NewService(be.checkers...)),
		AuthMW:       jwt.NewAuthMiddleware(issuer),
		CORS:         middleware.CORS(cfg.CORSOrigins),
	}
	if cfg.AuthRateLimit > 0 {
		routes.AuthLimiter = middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	}

	app := fiber.New(fiber.Config{
		AppName:               "finance",
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestLogger(log))
	httpapi.Register(app, routes)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening",
			logging.FieldOperation, logging.OpStartup,
			"port", cfg.Port,
			"data_backend", cfg.DataBackend,
			"events_backend", cfg.EventsBackend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", logging.FieldOperation, logging.OpShutdown)
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openBackend(ctx context.Context, cfg config.Config, log *logging.Logger) (*backend, error) {
	be := &backend{}

	switch cfg.DataBackend {
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		pool, err := postgres.Connect(connectCtx, cfg.DatabaseURL, postgres.PoolConfig{MaxConns: cfg.DBMaxConns})
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		be.closers = append(be.closers, pool.Close)
		if err := postgres.Migrate(connectCtx, pool); err != nil {
			be.close()
			return nil, err
		}
		log.Info("postgres schema up to date", logging.FieldOperation, logging.OpStartup)
		be.accounts = pgrepo.NewAccountRepository(pool)
		be.entries = pgrepo.NewEntryRepository(pool)
		be.checkers = append(be.checkers, checkers.Postgres(pool))
	default:
		store := memory.NewStore()
		be.accounts = store.Accounts()
		be.entries = store.Entries()
		log.Warn("using in-memory storage; data is lost on restart")
	}

	if cfg.RedisURL != "" {
		client, err := redisrepo.Connect(ctx, cfg.RedisURL)
		if err != nil {
			be.close()
			return nil, err
		}
		be.closers = append(be.closers, func() { _ = client.Close() })
		be.refresh = redisrepo.NewRefreshStore(client)
		be.checkers = append(be.checkers, checkers.Redis(client))
	} else {
		be.refresh = memory.NewRefreshStore()
		if cfg.DataBackend == config.BackendPostgres {
			log.Warn("REDIS_URL not set; refresh tokens are kept in memory and do not survive a restart")
		}
	}
	return be, nil
}

func openPublisher(cfg config.Config, be *backend) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsAMQP:
		p, err := amqpevents.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("amqp publisher: %w", err)
		}
		be.checkers = append(be.checkers, checkers.Broker("amqp", p.IsClosed))
		return p, nil
	case config.EventsKafka:
		return kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return events.Nop{}, nil
	}
}
