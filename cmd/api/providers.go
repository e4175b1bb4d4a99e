package main

import (
	"context"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/application/checkout"
	appuser "github.com/xiebiao/mall/internal/application/user"
	"github.com/xiebiao/mall/internal/domain/idempotency"
	"github.com/xiebiao/mall/internal/domain/inventory"
	"github.com/xiebiao/mall/internal/domain/user"
	"github.com/xiebiao/mall/internal/infrastructure/config"
	"github.com/xiebiao/mall/internal/infrastructure/persistence"
	"github.com/xiebiao/mall/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/mall/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mall/internal/interface/http/middleware"
	"github.com/xiebiao/mall/internal/interface/http/router"
	"github.com/xiebiao/mall/pkg/jwt"
	"github.com/xiebiao/mall/pkg/metrics"
	"github.com/xiebiao/mall/pkg/mq"
)

// provideBackend 按database.driver创建存储后端
func provideBackend(cfg *config.Config, logger zerolog.Logger) (*persistence.Backend, func(), error) {
	backend, err := persistence.NewBackend(cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭数据库连接失败")
		}
	}
	return backend, cleanup, nil
}

// provideRedis redis.enabled=false时返回nil，下游退化为进程内实现
func provideRedis(cfg *config.Config, logger zerolog.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideSessionStore(client *goredis.Client) appuser.SessionStore {
	if client == nil {
		return memory.NewSessionStore()
	}
	return redis.NewSessionStore(client)
}

// provideIdempotencyStore 持久化存储 + 可选的Redis缓存
func provideIdempotencyStore(cfg *config.Config, backend *persistence.Backend, client *goredis.Client, logger zerolog.Logger) idempotency.Store {
	if client == nil {
		return backend.Idempotency
	}
	return redis.NewIdempotencyCache(backend.Idempotency, client, cfg.Idempotency.CacheTTL, logger)
}

func provideGuard(cfg *config.Config, store idempotency.Store) *idempotency.Guard {
	return idempotency.NewGuard(store, cfg.Idempotency.TTL, cfg.Idempotency.Bucket)
}

func provideLedger(cfg *config.Config, backend *persistence.Backend, logger zerolog.Logger) *inventory.Ledger {
	return inventory.NewLedger(backend.Products,
		inventory.WithMaxRetries(cfg.Checkout.MaxStockRetries),
		inventory.WithBackoff(cfg.Checkout.RetryBackoff, cfg.Checkout.RetryMaxBackoff),
		inventory.WithConflictHook(func(uint) { metrics.IncStockConflict() }),
		inventory.WithLogger(logger),
	)
}

// providePublisher 按events.driver选择事件通道
func providePublisher(cfg *config.Config, logger zerolog.Logger) (mq.Publisher, func(), error) {
	var (
		pub mq.Publisher
		err error
	)
	switch cfg.Events.Driver {
	case "rabbitmq":
		pub, err = mq.NewRabbitPublisher(cfg.Events.RabbitMQ.URL, cfg.Events.RabbitMQ.Exchange, logger)
	case "kafka":
		pub = mq.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic, logger)
	default:
		pub = mq.NopPublisher{}
	}
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭事件发布者失败")
		}
	}
	return pub, cleanup, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideUserService(cfg *config.Config, repo user.Repository) user.Service {
	return user.NewService(repo, cfg.JWT.BcryptCost)
}

// provideLoginUseCase 会话有效期与Refresh Token一致
func provideLoginUseCase(cfg *config.Config, svc user.Service, jm *jwt.Manager, sessions appuser.SessionStore, logger zerolog.Logger) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(svc, jm, sessions, cfg.JWT.RefreshTokenExpire, logger)
}

func provideCheckoutConfig(cfg *config.Config) checkout.Config {
	return checkout.Config{
		Timeout:         cfg.Checkout.Timeout,
		OrderNoAttempts: cfg.Checkout.OrderNoAttempts,
	}
}

func provideAuthMiddleware(jm *jwt.Manager, sessions appuser.SessionStore) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jm, sessions)
}

func provideServer(cfg *config.Config, logger zerolog.Logger, h router.Handlers, auth *middleware.AuthMiddleware) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.New(cfg, logger, h, auth),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
