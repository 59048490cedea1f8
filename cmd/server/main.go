package main

import (
	"context"
	"database/sql"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"orderstock/internal/adapter/handler"
	"orderstock/internal/adapter/storage"
	"orderstock/internal/config"
	"orderstock/internal/core/domain"
	"orderstock/internal/core/service"
	"orderstock/internal/port"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	invCol, ordCol, closeStores, err := buildStores(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to initialize storage")
	}
	defer closeStores()

	if err := seedInventory(ctx, invCol, cfg.Seed, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed inventory")
	}

	orderService := service.NewOrderService(
		storage.NewInventoryRepository(invCol),
		storage.NewOrderRepository(ordCol),
		logger,
		nil,
	)

	httpHandler := handler.NewHTTPHandler(orderService, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Router(),
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Readiness listener for infra probes, beside the HTTP API.
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("failed to listen")
	}
	go func() {
		logger.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}
	grpcServer.GracefulStop()
	logger.Info().Msg("servers stopped")
}

// buildStores returns the inventory and order collections for the configured
// backend plus a close func for any underlying connections.
func buildStores(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (port.Collection[domain.InventoryEntry], port.Collection[domain.Order], func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendFile:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, nil, err
		}
		inv := storage.NewJSONStore[domain.InventoryEntry](filepath.Join(cfg.DataDir, "inventory.json"))
		ord := storage.NewJSONStore[domain.Order](filepath.Join(cfg.DataDir, "orders.json"))
		return inv, ord, noop, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		inv := storage.NewRedisStore[domain.InventoryEntry](rdb, "orderstock:inventory")
		ord := storage.NewRedisStore[domain.Order](rdb, "orderstock:orders")
		return inv, ord, func() { rdb.Close() }, nil

	case config.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, nil, err
		}
		logger.Info().Msg("connected to mysql")
		inv, err := storage.NewMySQLStore[domain.InventoryEntry](ctx, db, "inventory_records")
		if err != nil {
			return nil, nil, nil, err
		}
		ord, err := storage.NewMySQLStore[domain.Order](ctx, db, "order_records")
		if err != nil {
			return nil, nil, nil, err
		}
		return inv, ord, func() { db.Close() }, nil

	default: // config.Load already validated; memory is what's left
		return storage.NewMemoryStore[domain.InventoryEntry](), storage.NewMemoryStore[domain.Order](), noop, nil
	}
}

// seedInventory provisions stock on first start. A non-empty collection is
// left alone: stock already reflects live reservations.
func seedInventory(ctx context.Context, col port.Collection[domain.InventoryEntry], seed []config.SeedEntry, logger zerolog.Logger) error {
	existing, err := col.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 || len(seed) == 0 {
		return nil
	}
	for _, entry := range seed {
		_, err := col.Insert(ctx, domain.InventoryEntry{
			ProductID: entry.ProductID,
			Name:      entry.Name,
			Available: entry.Quantity,
		})
		if err != nil {
			return err
		}
		logger.Info().Str("product_id", entry.ProductID).Int("available", entry.Quantity).Msg("seeded inventory entry")
	}
	return nil
}
