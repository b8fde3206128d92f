package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gosales/internal/pkg/pkguid"
	"github.com/shandysiswandi/gosales/internal/sales/event"
	"github.com/shandysiswandi/gosales/internal/sales/inbound"
	"github.com/shandysiswandi/gosales/internal/sales/storage"
	"github.com/shandysiswandi/gosales/internal/sales/store"
	"github.com/shandysiswandi/gosales/internal/sales/usecase"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	jobs, redisClient, err := newJobStore(dep.Context, dep.Config)
	if err != nil {
		return nil, err
	}

	artifacts, err := storage.New(dep.Context, storage.Config{
		Driver:    dep.Config.GetString("sales.storage.driver"),
		LocalDir:  dep.Config.GetString("sales.storage.local.dir"),
		Endpoint:  dep.Config.GetString("sales.storage.s3.endpoint"),
		AccessKey: dep.Config.GetString("sales.storage.s3.access_key"),
		SecretKey: dep.Config.GetString("sales.storage.s3.secret_key"),
		Bucket:    dep.Config.GetString("sales.storage.s3.bucket"),
		Secure:    dep.Config.GetBool("sales.storage.s3.secure"),
		URLExpiry: dep.Config.GetDuration("sales.storage.s3.url_expiry"),
	})
	if err != nil {
		return nil, err
	}

	buffer := int(dep.Config.GetInt("sales.bus_buffer"))
	if buffer < 1 {
		buffer = 512
	}
	bus := event.NewBus(buffer)

	// A single worker keeps registry updates for a job in publish order.
	consumer := event.NewStatusConsumer(bus, event.NewStatusProjector(jobs), event.ConsumerConfig{
		Workers:     1,
		MaxRetries:  3,
		BaseBackoff: 200 * time.Millisecond,
	})
	consumer.Start()

	uc := usecase.New(usecase.Dependency{
		Store:   jobs,
		Events:  bus,
		Storage: artifacts,
		Runner:  dep.Goroutine,
		ID:      dep.ID,
		RootCtx: dep.Context,
		Config: usecase.Config{
			ChunkSize:        int(dep.Config.GetInt("sales.chunk_size_bytes")),
			ProgressInterval: dep.Config.GetDuration("sales.progress_interval"),
		},
	})

	sessions, err := pkguid.NewSnowflake()
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	inbound.RegisterWSEndpoint(dep.Router, uc, bus, sessions)

	closer := func(ctx context.Context) error {
		err := consumer.Stop(ctx)
		if redisClient != nil {
			if cerr := redisClient.Close(); err == nil {
				err = cerr
			}
		}

		return err
	}

	return closer, nil
}

func newJobStore(ctx context.Context, cfg pkgconfig.Config) (usecase.Store, *redis.Client, error) {
	switch driver := cfg.GetString("sales.store.driver"); driver {
	case "", "memory":
		return store.NewInMemoryStore(), nil, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetString("sales.store.redis.address"),
			Password: cfg.GetString("sales.store.redis.password"),
			DB:       int(cfg.GetInt("sales.store.redis.db")),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}

		return store.NewRedisStore(client, cfg.GetDuration("sales.store.redis.ttl")), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
