package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-orders/internal/auth"
	"ms-orders/internal/config"
	"ms-orders/internal/logger"
	"ms-orders/internal/order"
	"ms-orders/internal/order/api"
	"ms-orders/internal/order/cache"
	"ms-orders/internal/order/db"
	orderkafka "ms-orders/internal/order/kafka"
	"ms-orders/internal/order/receipt"
	"ms-orders/internal/uploads"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	lg := logger.New("order-service")
	defer lg.Close()

	// --- Durable store (single-file SQLite) ---
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		lg.Fatal("DATABASE", fmt.Sprintf("cannot create database dir: %v", err))
	}
	sqldb, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		lg.Fatal("DATABASE", fmt.Sprintf("cannot open %s: %v", cfg.Database.Path, err))
	}
	defer sqldb.Close()

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.Migrate(bunDB); err != nil {
		lg.Fatal("DATABASE", fmt.Sprintf("migration failed: %v", err))
	}
	lg.Info("DATABASE", fmt.Sprintf("durable store ready at %s", cfg.Database.Path))

	// --- Replica cache (Redis) ---
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The cache is best-effort; run degraded instead of dying.
			lg.Warn("CACHE", fmt.Sprintf("redis unreachable at %s, running without replica cache: %v", cfg.Redis.Addr, err))
			redisClient = nil
		}
		cancel()
	}
	replicaCache := cache.New(nil)
	if redisClient != nil {
		replicaCache = cache.New(redisClient)
		lg.Info("CACHE", fmt.Sprintf("replica cache connected at %s", cfg.Redis.Addr))
	}

	// --- Collaborators ---
	artifacts, err := uploads.NewStore(cfg.Uploads.Dir)
	if err != nil {
		lg.Fatal("UPLOADS", err.Error())
	}

	checker := order.NewPingChecker(sqldb.PingContext, cfg.Database.ProbeTimeout)

	service := order.NewOrderService(&db.DB{Bun: bunDB}, replicaCache, checker, lg)
	service.Artifacts = artifacts

	if cfg.Kafka.Enabled {
		producer := orderkafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		service.Events = producer
		lg.Info("KAFKA", fmt.Sprintf("order events enabled on %v", cfg.Kafka.Brokers))
	}

	handler := &api.Handler{
		OrderService: service,
		Receipts:     receipt.NewGenerator(cfg.Receipt.Secret),
		Logger:       lg,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Get("/health", handler.Health)
	r.Post("/api/v1/orders", handler.CreateOrder)
	r.Get("/api/v1/orders/{orderId}/receipt", handler.Receipt)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Get("/api/v1/orders", handler.ListOrders)
		r.Get("/api/v1/orders/{orderId}", handler.GetOrder)
		r.Put("/api/v1/orders/{orderId}/status", handler.UpdateStatus)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		lg.Info("SERVER", fmt.Sprintf("order service listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("SERVER", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("SERVER", "shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		lg.Error("SERVER", fmt.Sprintf("forced shutdown: %v", err))
	}
}
