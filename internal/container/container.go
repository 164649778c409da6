package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/config"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/proxy"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/service"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/state"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/store"
)

// Container holds all initialized components
type Container struct {
	Config      *config.Config
	Accumulator *store.Accumulator
	Progress    state.Manager

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxySupplier := proxy.NewSupplier(context.Background(), cfg.Browser.Proxies, cfg.Scraper.BaseURL)

	progress := state.NewNoopManager()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		progress = state.NewRedisManager(rdb)
	}
	container.Progress = progress

	var mirrors []store.Sink
	if cfg.Database.Enabled {
		db, err := pgxpool.New(context.Background(),
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		log.Info("✅ Connected to Postgres successfully")

		container.db = db
		mirrors = append(mirrors, store.NewPostgresSink(db))
	}

	accumulator := store.NewAccumulator(cfg.Scraper.RecordCap)
	container.Accumulator = accumulator

	csvWriter := store.NewCSVWriter(cfg.Output.Dir, cfg.Output.FilePrefix)

	container.Service = service.New(
		cfg,
		accumulator,
		csvWriter,
		mirrors,
		proxySupplier,
		progress,
	)

	return container, nil
}

// Run executes a full scrape: discovery, traversal, and persistence.
func (c *Container) Run(ctx context.Context) error {
	return c.Service.Run(ctx)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("failed to close redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
