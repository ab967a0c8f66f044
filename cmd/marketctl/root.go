package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	tradeapp "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/feed"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "marketctl",
		Short: "Marketplace operator tool",
		Long: `marketctl performs operator tasks directly against the marketplace database.

Configuration is read the same way as the server: config.toml in the working
directory, overridden by MARKET_* environment variables.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newIngestCmd(opts),
		newOrderCmd(opts),
		newFeedsCmd(opts),
		newUserCmd(opts),
	)
	return cmd
}

// app holds the connections one command invocation works with
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *persistence.Database
	redis redis.UniversalClient
}

func openApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:  opts.logLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(opts.logLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	a := &app{cfg: cfg, log: log, db: db}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, feed lock is process local", zap.Error(err))
		} else {
			a.redis = client
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("Error closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) accounts() *identityapp.AccountService {
	return identityapp.NewAccountService(
		persistence.NewGormUserRepository(a.db.DB),
		auth.NewJWTService(a.cfg.JWT),
		auth.NewInMemoryTokenBlacklist(),
		a.log,
	)
}

func (a *app) ingestor() (*catalogapp.FeedIngestor, error) {
	ingestor := catalogapp.NewFeedIngestor(
		persistence.NewGormCatalogTransactionScope(a.db.DB),
		feed.NewHTTPFetcher(a.cfg.Feed, a.log),
		feed.NewYAMLDecoder(),
		cache.NewLocker(a.redis, a.cfg.Feed, a.log),
		a.log,
	)
	if a.cfg.Storage.Enabled {
		archive, err := a.archive()
		if err != nil {
			return nil, err
		}
		ingestor.SetArchive(archive)
	}
	return ingestor, nil
}

func (a *app) orders() *tradeapp.OrderService {
	return tradeapp.NewOrderService(
		persistence.NewGormOrderRepository(a.db.DB),
		persistence.NewGormShopRepository(a.db.DB),
		persistence.NewGormShopOrderQuery(a.db.DB),
		a.log,
	)
}

var errStorageDisabled = errors.New("feed archive is disabled (set storage.enabled)")

func (a *app) archive() (*storage.S3FeedArchive, error) {
	if !a.cfg.Storage.Enabled {
		return nil, errStorageDisabled
	}
	return storage.NewS3FeedArchive(&a.cfg.Storage, storage.WithLogger(a.log))
}

func (a *app) findUser(ctx context.Context, email string) (*identity.User, error) {
	user, err := persistence.NewGormUserRepository(a.db.DB).FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("no account with email %q", email)
	}
	return user, err
}

// operator is the actor marketctl acts as for admin-only operations
var operator = identity.Actor{Type: identity.UserTypeAdmin}
