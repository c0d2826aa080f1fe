package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	orderapp "github.com/wyfcoding/ecommerce/internal/order/application"
	orderdomain "github.com/wyfcoding/ecommerce/internal/order/domain"
	ordernotify "github.com/wyfcoding/ecommerce/internal/order/infrastructure/notify"
	ordermysql "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/ecommerce/internal/order/interfaces/http"
	productapp "github.com/wyfcoding/ecommerce/internal/product/application"
	productdomain "github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/internal/product/infrastructure/assetstore"
	productcache "github.com/wyfcoding/ecommerce/internal/product/infrastructure/cache"
	productmysql "github.com/wyfcoding/ecommerce/internal/product/infrastructure/persistence/mysql"
	producthttp "github.com/wyfcoding/ecommerce/internal/product/interfaces/http"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/idgen"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/mq"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/storefront/config.toml", "path to config file")
	nodeID := flag.Int64("node", 1, "snowflake node id")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting storefront service",
		"version", cfg.Version, "environment", cfg.Environment)

	// 数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(&productdomain.Product{}, &orderdomain.Order{}); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init Redis", "error", err)
	}
	defer redisCache.Close()

	// Kafka
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init Kafka producer", "error", err)
	}
	defer producer.Close()

	// 指标
	m := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics server", "error", err)
		}
	}

	// 商品模块装配
	productRepo := productmysql.NewProductRepository(database.DB)
	assets := assetstore.NewCloudinaryStore(cfg.Cloudinary)
	prodCache := productcache.NewRedisProductCache(redisCache, time.Duration(cfg.Redis.ProductCacheTTL)*time.Second)
	productCommands := productapp.NewProductCommandService(productRepo, assets, prodCache, m)
	productQueries := productapp.NewProductQueryService(productRepo, prodCache)
	productHandler := producthttp.NewProductHandler(productCommands, productQueries)

	// 订单模块装配
	orderRepo := ordermysql.NewOrderRepository(database.DB)
	notifier := ordernotify.NewKafkaNotifier(producer, cfg.Kafka.NotificationTopic)
	sf := idgen.NewSnowflake(*nodeID)
	orderCommands := orderapp.NewOrderCommandService(orderRepo, notifier, sf, m)
	orderQueries := orderapp.NewOrderQueryService(orderRepo)
	orderHandler := orderhttp.NewOrderHandler(orderCommands, orderQueries)

	// HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.MaxMultipartMemory = int64(cfg.HTTP.MaxMultipartMemory) << 20
	engine.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
	)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.Client())
		engine.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))
	}
	engine.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.HTTPRequestsTotal.Inc()
		m.HTTPRequestDuration.Observe(time.Since(start).Seconds())
	})

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.ServiceName,
			"version": cfg.Version,
		})
	})

	api := engine.Group("/api/v1")
	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down storefront service")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}
	logger.Info(ctx, "Storefront service stopped")
}
