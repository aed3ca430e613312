package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-ledger/internal/events"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/intake"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/config"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"
	applogger "go-inventory-ledger/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := applogger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Setup Store
	productRepo, txRepo, closeStore := openStore(cfg, zlog)
	defer closeStore()

	// 3. Setup WebSocket Hub and event sinks
	wsHub := ws.NewHub(zlog)
	go wsHub.Run(ctx)

	sinks := events.NewMultiPublisher(zlog, wsHub)
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEventTopic, zlog)
		defer producer.Close()
		sinks.Add(producer)
		zlog.Info("Publishing events to Kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaEventTopic))
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Warn("Redis unreachable, publishing anyway", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		sinks.Add(events.NewRedisPublisher(rdb, cfg.RedisChannel))
	}
	publisher := events.NewAsync(sinks, 256, 5*time.Second, zlog)

	// 4. Dependency Injection (Wiring Layers)
	stockService := service.NewStockService(txRepo)
	invService := service.NewInventoryService(productRepo, txRepo, stockService, publisher, zlog, service.Options{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	dashService := service.NewDashboardService(productRepo, txRepo, stockService)

	invHandler := handler.NewInventoryHandler(invService, stockService)
	dashHandler := handler.NewDashboardHandler(dashService)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	rateLimit, err := middleware.RateLimit(cfg.RateLimit, zlog)
	if err != nil {
		zlog.Fatal("Invalid rate limit", zap.Error(err))
	}

	// 5. Movement intake
	var consumer *intake.Consumer
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaIntakeTopic != "" {
		consumer = intake.NewConsumer(cfg.KafkaBrokers, cfg.KafkaIntakeTopic, cfg.KafkaGroupID, invService, zlog)
		go consumer.Run(ctx)
		zlog.Info("Consuming stock movements", zap.String("topic", cfg.KafkaIntakeTopic), zap.String("group", cfg.KafkaGroupID))
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Inventory Ledger v1.0",
		ErrorHandler: handler.NewErrorHandler(zlog),
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "store": cfg.StoreDriver, "ws_clients": wsHub.ClientCount()})
	})

	// 7. Routes
	handler.RegisterRoutes(app.Group("/api/v1"), invHandler, dashHandler, middleware.RequireAuth(tokens), rateLimit)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		select {
		case wsHub.Register <- c:
		case <-ctx.Done():
			return
		}
		defer func() {
			select {
			case wsHub.Unregister <- c:
			case <-ctx.Done():
			}
		}()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("Server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			zlog.Warn("Failed to close intake reader", zap.Error(err))
		}
	}
	publisher.Close()

	zlog.Info("Server exited")
}

// openStore picks the catalog and ledger backends from STORE_DRIVER.
func openStore(cfg *config.Config, zlog *zap.Logger) (repository.ProductRepository, repository.TransactionRepository, func()) {
	if cfg.StoreDriver == config.StoreMemory {
		zlog.Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryProductRepo(), repository.NewMemoryTransactionRepo(), func() {}
	}

	db, err := database.ConnectDB(cfg.DSN(), zlog, cfg.IsDevelopment())
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("Failed to migrate database", zap.Error(err))
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repository.NewProductRepo(db), repository.NewTransactionRepo(db), closeDB
}
