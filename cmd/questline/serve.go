package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	memdir "github.com/questline/questline/adapters/directory"
	"github.com/questline/questline/adapters/events"
	"github.com/questline/questline/adapters/postgres"
	memquests "github.com/questline/questline/adapters/quests"
	"github.com/questline/questline/adapters/store"
	"github.com/questline/questline/core"
	"github.com/questline/questline/internal/config"
	"github.com/questline/questline/internal/httpserver"
	"github.com/questline/questline/internal/logutil"
	"github.com/questline/questline/internal/proof"
	"github.com/questline/questline/ports"
	"github.com/questline/questline/service"
	"github.com/questline/questline/transport/http"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the questline HTTP server",
		Long: `Start the HTTP server with the configured Redis and PostgreSQL
backends. With --dev everything runs in-process against in-memory backends
and a demo/demo user is seeded, so no external services are needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), dev)
		},
	}

	cmd.Flags().BoolVar(&dev, "dev", false, "run with in-memory backends and a seeded demo user")

	return cmd
}

// backends bundles the infrastructure behind the services together with a
// teardown that releases whatever the chosen mode opened.
type backends struct {
	ephemeral ports.EphemeralStore
	directory ports.UserDirectory
	quests    ports.QuestRepository
	eventPub  ports.EventPublisher
	health    http.HealthCheck
	teardown  func()
}

func runServe(ctx context.Context, dev bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := logutil.New(cfg.Log.Level, cfg.Log.Format)
	ctx = logutil.WithLogger(ctx, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var b *backends
	if dev {
		b, err = openDevBackends(logger)
	} else {
		b, err = openBackends(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}
	defer b.teardown()

	nonces := service.NewNonceLedger(b.ephemeral, cfg.Auth.Nonce.TTL)
	tokens := service.NewTokenLedger(b.ephemeral, cfg.Auth.Token.TTL)
	authService := service.NewAuthService(b.directory, nonces, tokens, b.eventPub)
	questService := service.NewQuestService(b.quests, b.eventPub)

	metrics := http.NewMetrics()
	router := http.SetupRouter(authService, questService, metrics, logger, b.health)

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Bool("dev", dev).
		Msg("questline starting")
	return httpserver.Serve(ctx, cfg.Server.Addr, router)
}

// openBackends connects to Redis and PostgreSQL, retrying the initial pings
// so the server survives racing its backends on startup.
func openBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backends, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)

	ephemeral := store.NewRedisStore(redisClient)
	if err := retry.Do(ctx, bootBackoff(), func(ctx context.Context) error {
		if pingErr := ephemeral.Ping(ctx); pingErr != nil {
			logger.Warn().Err(pingErr).Msg("redis not ready, retrying")
			return retry.RetryableError(pingErr)
		}
		return nil
	}); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, bootBackoff(), func(ctx context.Context) error {
		p, poolErr := postgres.NewPool(ctx, cfg.Postgres.URL)
		if poolErr != nil {
			logger.Warn().Err(poolErr).Msg("postgres not ready, retrying")
			return retry.RetryableError(poolErr)
		}
		pool = p
		return nil
	}); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		events.NewZerologAdapter(logger),
	)
	if err != nil {
		pool.Close()
		redisClient.Close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}

	return &backends{
		ephemeral: ephemeral,
		directory: postgres.NewUserDirectory(pool),
		quests:    postgres.NewQuestRepository(pool),
		eventPub:  events.NewWatermillPublisher(publisher),
		health: func(ctx context.Context) error {
			if err := ephemeral.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			return nil
		},
		teardown: func() {
			if err := publisher.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close event publisher")
			}
			pool.Close()
			if err := redisClient.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close redis client")
			}
		},
	}, nil
}

// openDevBackends wires everything in-memory and seeds a demo/demo user so a
// fresh checkout can exercise the API without Redis or PostgreSQL.
func openDevBackends(logger zerolog.Logger) (*backends, error) {
	salt, err := randomSalt()
	if err != nil {
		return nil, fmt.Errorf("generate demo salt: %w", err)
	}

	dir := memdir.NewMemory()
	dir.Add(core.UserCredential{
		Username:     "demo",
		PasswordHash: proof.HashPassword("demo", salt),
		PasswordSalt: salt,
	})
	logger.Info().Str("username", "demo").Str("password", "demo").Msg("seeded dev user")

	ephemeral := store.NewMemoryStore()
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, events.NewZerologAdapter(logger))

	return &backends{
		ephemeral: ephemeral,
		directory: dir,
		quests:    memquests.NewMemory(),
		eventPub:  events.NewWatermillPublisher(pubsub),
		health:    ephemeral.Ping,
		teardown: func() {
			if err := pubsub.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close pubsub")
			}
		},
	}, nil
}

// bootBackoff returns a fresh backoff for one boot-time connection attempt.
// Fibonacci from half a second, capped at five retries.
func bootBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
}
