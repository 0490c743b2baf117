package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodhub-api/config"
	"foodhub-api/events"
	"foodhub-api/handlers"
	"foodhub-api/idempotency"
	"foodhub-api/logging"
	"foodhub-api/mailer"
	"foodhub-api/middleware"
	"foodhub-api/repository"
	"foodhub-api/routes"
	"foodhub-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	store := repository.New(db)

	// Idempotency fast path is optional; the unique index on orders still holds without it
	var (
		idem idempotency.Store = idempotency.NopStore{}
		rdb  *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = idempotency.NewRedisClient(cfg.RedisAddr)
		idem = idempotency.NewRedisStore(rdb)
		log.WithField("addr", cfg.RedisAddr).Info("redis idempotency store enabled")
	}

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.WithFields(logrus.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("kafka publisher enabled")
	} else {
		publisher = events.NewLogPublisher(log)
	}
	emitter := events.NewEmitter(publisher, cfg.ServiceName, log)

	sessions := middleware.NewJWTResolver(cfg.JWTSecret, cfg.TokenTTL, store)

	authSvc := services.NewAuthService(store, sessions, mailer.NewLogMailer(log), cfg.PublicBaseURL, log)
	catalogSvc := services.NewCatalogService(store, cfg.CategoryDeletePolicy)
	cartSvc := services.NewCartService(store)
	orderSvc := services.NewOrderService(store, idem, emitter, log)
	providerSvc := services.NewProviderService(store, cfg.ProviderDeletePolicy)
	userSvc := services.NewUserService(store)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", handlers.Health(store))
	r.GET("/", handlers.Welcome)

	routes.SetupRoutes(r, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, log, cfg.IsProduction()),
		Catalog:  handlers.NewCatalogHandler(catalogSvc, log),
		Cart:     handlers.NewCartHandler(cartSvc, log),
		Order:    handlers.NewOrderHandler(orderSvc, log),
		Provider: handlers.NewProviderHandler(providerSvc, log),
		Customer: handlers.NewCustomerHandler(userSvc, log),
		Sessions: sessions,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("server running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("closing event publisher")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", handlers.IdempotencyKeyHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
