package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/api"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/cache"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/config"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/events"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/repository"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/service"
	"github.com/Cheertaboi/pharmacy-pricing-service/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("pricing-service stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	conn, err := db.NewPostgresConnection(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close()

	if cfg.RunMigrations {
		version, err := db.RunMigrations(conn)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", zap.Uint("version", version))
	}

	shippingCache, closeCache := newShippingCache(cfg, logger)
	defer closeCache()

	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher", zap.Error(err))
		}
	}()

	products := repository.NewProductRepo(conn)
	promoCodes := repository.NewPromoCodeRepo(conn)
	usage := repository.NewUsageRepo(conn)
	shipping := repository.NewShippingRepo(conn)
	orders := repository.NewOrderRepo(conn)
	tx := repository.NewTxManager(conn)

	pricingSvc := service.NewPricingService(products, promoCodes, usage, shipping, shippingCache, cfg.CartLoadWorkers, logger)
	checkoutSvc := service.NewCheckoutService(pricingSvc, usage, orders, tx, publisher, logger)
	adminSvc := service.NewAdminService(products, promoCodes, shipping, tx, pricingSvc, logger)

	router := api.NewRouter(api.Services{
		Pricing:  pricingSvc,
		Checkout: checkoutSvc,
		Admin:    adminSvc,
	}, logger, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "pricing-service"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("http server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting pricing-service", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	<-idleConnsClosed
	logger.Info("server stopped")
	return nil
}

func newShippingCache(cfg *config.Config, logger *zap.Logger) (cache.ShippingCache, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("shipping cache in memory", zap.Duration("ttl", cfg.ShippingCacheTTL))
		return cache.NewMemoryCache(cfg.ShippingCacheTTL), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	logger.Info("shipping cache in redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.ShippingCacheTTL))
	return cache.NewRedisCache(client, cfg.ShippingCacheTTL), func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis client", zap.Error(err))
		}
	}
}

func newPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no kafka brokers configured, order events are discarded")
		return events.NopPublisher{}
	}
	logger.Info("publishing order events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaOrderTopic),
	)
	return events.NewKafkaPublisher(cfg.KafkaOrderTopic, cfg.KafkaBrokers...)
}
