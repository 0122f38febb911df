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
	"golang.org/x/sync/errgroup"

	cartapp "github.com/wyfcoding/marketplace/internal/cart/application"
	cartredis "github.com/wyfcoding/marketplace/internal/cart/infrastructure/persistence/redis"
	carthttp "github.com/wyfcoding/marketplace/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/marketplace/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/marketplace/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/marketplace/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/marketplace/internal/catalog/interfaces/http"
	checkoutapp "github.com/wyfcoding/marketplace/internal/checkout/application"
	checkoutredis "github.com/wyfcoding/marketplace/internal/checkout/infrastructure/persistence/redis"
	"github.com/wyfcoding/marketplace/internal/checkout/infrastructure/stripe"
	checkouthttp "github.com/wyfcoding/marketplace/internal/checkout/interfaces/http"
	orderapp "github.com/wyfcoding/marketplace/internal/order/application"
	orderdomain "github.com/wyfcoding/marketplace/internal/order/domain"
	ordermysql "github.com/wyfcoding/marketplace/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/marketplace/internal/order/interfaces/http"
	userapp "github.com/wyfcoding/marketplace/internal/user/application"
	userdomain "github.com/wyfcoding/marketplace/internal/user/domain"
	usermysql "github.com/wyfcoding/marketplace/internal/user/infrastructure/persistence/mysql"
	userhttp "github.com/wyfcoding/marketplace/internal/user/interfaces/http"
	"github.com/wyfcoding/marketplace/pkg/cache"
	"github.com/wyfcoding/marketplace/pkg/config"
	"github.com/wyfcoding/marketplace/pkg/db"
	"github.com/wyfcoding/marketplace/pkg/logger"
	"github.com/wyfcoding/marketplace/pkg/metrics"
	"github.com/wyfcoding/marketplace/pkg/middleware"
	"github.com/wyfcoding/marketplace/pkg/mq"
	"github.com/wyfcoding/marketplace/pkg/outbox"
	"github.com/wyfcoding/marketplace/pkg/ratelimit"
)

var configPath = flag.String("config", "configs/marketplace/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
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
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	ctx := context.Background()

	// 3. 指标
	metricsImpl := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := metricsImpl.Register(); err != nil {
			logger.Error(ctx, "failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Error(ctx, "failed to start metrics server", "error", err)
		}
	}

	// 4. 数据库
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
		logger.Fatal(ctx, "failed to connect database", "error", err)
	}
	if cfg.Environment == "dev" {
		err := database.AutoMigrate(
			&catalogdomain.Category{},
			&catalogdomain.Size{},
			&catalogdomain.Color{},
			&catalogdomain.Product{},
			&userdomain.User{},
			&userdomain.ShippingAddress{},
			&orderdomain.Order{},
			&orderdomain.OrderItem{},
			&outbox.Message{},
		)
		if err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
		}
	}

	// 5. Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}

	// 6. Kafka & Outbox
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init kafka producer", "error", err)
	}
	outboxMgr := outbox.NewManager(database.DB)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return producer.SendRaw(ctx, topic, key, payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	// 7. 仓储
	sessionTTL := time.Duration(cfg.Session.TTL) * time.Second
	productRepo := catalogmysql.NewProductRepository(database.DB)
	categoryRepo := catalogmysql.NewCategoryRepository(database.DB)
	cartRepo := cartredis.NewCartRepository(redisCache, sessionTTL)
	userRepo := usermysql.NewUserRepository(database.DB)
	addressRepo := usermysql.NewAddressRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database.DB)
	pendingRepo := checkoutredis.NewPendingSessionRepository(redisCache, sessionTTL)
	gateway := stripe.NewClient(cfg.Payment)

	// 8. 应用服务
	catalogSvc := catalogapp.NewCatalogService(productRepo, categoryRepo)
	cartCmdSvc := cartapp.NewCartCommandService(cartRepo, productRepo, metricsImpl)
	cartQuerySvc := cartapp.NewCartQueryService(cartRepo, productRepo)
	userSvc := userapp.NewUserService(userRepo, addressRepo)
	checkoutSvc := checkoutapp.NewCheckoutService(
		cartRepo, productRepo, orderRepo, userSvc,
		gateway, pendingRepo, outboxMgr, metricsImpl, cfg.Payment,
	)
	orderQuerySvc := orderapp.NewOrderQueryService(orderRepo)

	// 9. 接口层
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware())
	r.Use(middleware.GinLoggingMiddleware())
	r.Use(middleware.GinCORSMiddleware())
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.Client())
		r.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit, cfg.Session.CookieName))
	}

	// 回调路由不参与浏览器会话
	webhookGroup := r.Group("/api")
	checkoutHandler := checkouthttp.NewHandler(checkoutSvc)
	checkoutHandler.RegisterWebhookRoutes(webhookGroup)

	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure))
	api.Use(userhttp.IdentityMiddleware(userRepo))
	cataloghttp.NewHandler(catalogSvc).RegisterRoutes(api)
	carthttp.NewHandler(cartCmdSvc, cartQuerySvc).RegisterRoutes(api)
	userhttp.NewHandler(userSvc).RegisterRoutes(api)
	checkoutHandler.RegisterRoutes(api)
	orderhttp.NewHandler(orderQuerySvc).RegisterRoutes(api)

	// 10. 启动
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		outboxProcessor.Start()
		<-gctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	// 每小时清理一次已投递超过 24h 的 outbox 消息
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := outboxMgr.Cleanup(gctx, time.Now().Add(-24*time.Hour)); err != nil {
					logger.Warn(gctx, "outbox cleanup failed", "error", err)
				}
			}
		}
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g.Go(func() error {
		logger.Info(gctx, "HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "shutting down servers...")
		case <-gctx.Done():
			logger.Info(gctx, "context cancelled, shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(gctx, "http server shutdown failed", "error", err)
		}
		if err := producer.Close(); err != nil {
			logger.Error(gctx, "kafka producer close failed", "error", err)
		}
		if err := redisCache.Close(); err != nil {
			logger.Error(gctx, "redis close failed", "error", err)
		}
		if err := database.Close(); err != nil {
			logger.Error(gctx, "database close failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
	}
}
