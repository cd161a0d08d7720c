package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/transporteur/marketplace/internal/api"
	"github.com/transporteur/marketplace/internal/core/ports"
	"github.com/transporteur/marketplace/internal/core/service"
	"github.com/transporteur/marketplace/internal/core/tracking"
	"github.com/transporteur/marketplace/internal/infrastructure/db/bolt"
	mongostore "github.com/transporteur/marketplace/internal/infrastructure/db/mongo"
	redisstore "github.com/transporteur/marketplace/internal/infrastructure/db/redis"
	"github.com/transporteur/marketplace/internal/infrastructure/db/sqlstore"
	"github.com/transporteur/marketplace/internal/infrastructure/http/handlers"
	"github.com/transporteur/marketplace/internal/infrastructure/messaging/kafka"
	"github.com/transporteur/marketplace/internal/infrastructure/payment"
	"github.com/transporteur/marketplace/internal/infrastructure/queue"
	"github.com/transporteur/marketplace/internal/pkg/config"
	"github.com/transporteur/marketplace/pkg/logger"
)

// keyStore is implemented by both the Redis and the Bolt backends.
type keyStore interface {
	ports.IdempotencyStore
	ports.TokenRevoker
}

// app owns every long-lived resource of a running server.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	store   *sqlstore.Store
	keys    keyStore
	tracker *tracking.Interpolator
	events  *queue.Dispatcher
	deps    api.Deps
	closers []func() error
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	return sqlstore.Open(ctx, sqlstore.Config{
		Driver:     cfg.Store.Driver,
		URL:        cfg.Store.DatabaseURL,
		SQLitePath: cfg.Store.SQLitePath,
	})
}

// openKeyStore returns the configured key store with its health check.
func openKeyStore(ctx context.Context, cfg *config.Config) (keyStore, handlers.Check, func() error, error) {
	switch cfg.KV.Backend {
	case "redis":
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return redisstore.NewKeyStore(rdb), handlers.PingRedis(rdb), rdb.Close, nil
	default:
		ks, err := bolt.Open(cfg.KV.BoltPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return ks, nil, ks.Close, nil
	}
}

// newApp connects every configured backend and wires the services. Optional
// backends (MongoDB, Kafka) are skipped when unconfigured.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()

	checks := make(map[string]handlers.Check)

	a.store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)
	checks["store"] = handlers.PingStore(a.store)

	keys, keysCheck, keysClose, err := openKeyStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.keys = keys
	a.closers = append(a.closers, keysClose)
	if keysCheck != nil {
		checks["redis"] = keysCheck
	}

	var audit ports.AuditRepository
	if cfg.Mongo.URI != "" {
		var (
			client *mongo.Client
			db     *mongo.Database
		)
		client, db, err = mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(dctx)
		})
		repo := mongostore.NewAuditRepository(db)
		if err = repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		audit = repo
		checks["mongodb"] = handlers.PingMongo(db)
	}

	var publisher ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		var producer sarama.SyncProducer
		producer, err = kafka.NewSyncProducer(kafka.Config{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: "marketplace",
			Timeout:  5 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		pub := kafka.NewPublisher(producer, cfg.Kafka.Topic, logger.Component("kafka"))
		a.closers = append(a.closers, pub.Close)
		publisher = pub
	}

	a.tracker = tracking.NewInterpolator(cfg.Tracking.TripDuration)
	processor := service.NewEventService(audit, publisher, a.keys, logger.Component("events"))
	a.events = queue.NewDispatcher(cfg.Tracking.AuditWorkers, processor, logger.Component("dispatcher"))

	missionRepo := sqlstore.NewMissionRepository(a.store)
	accountRepo := sqlstore.NewAccountRepository(a.store)
	authService := service.NewAuthService(accountRepo, a.keys, cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	a.deps = api.Deps{
		Log:       logger.Component("http"),
		JWTSecret: cfg.Auth.JWTSecret,
		Revoker:   a.keys,
		Resolver:  authService,
		Auth:      authService,
		Missions:  service.NewMissionService(missionRepo, accountRepo, a.events, a.tracker, log),
		Payments: service.NewPaymentService(missionRepo, payment.NewSimulatedGateway(log),
			a.keys, cfg.KV.IdempotencyTTL, a.events, a.tracker, log),
		Tracking: service.NewTrackingService(missionRepo, a.tracker, log),
		Profiles: service.NewProfileService(accountRepo, missionRepo),
		Admin:    service.NewAdminService(accountRepo, missionRepo, audit),
		Checks:   checks,
	}
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("close: %w", errors.Join(errs...))
	}
	return nil
}
