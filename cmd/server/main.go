// @title Storefront Checkout API
// @version 1.0
// @description 下单、SSLCommerz 支付与订单查询
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_checkout/docs"
	"shop_checkout/internal/pkg/config"
	"shop_checkout/internal/pkg/events"
	"shop_checkout/internal/pkg/middleware"
	"shop_checkout/internal/pkg/push"
	"shop_checkout/internal/pkg/registry"
	"shop_checkout/internal/pkg/worker"
	"shop_checkout/pkg/database"
	"shop_checkout/pkg/logger"
	"shop_checkout/pkg/metrics"

	// 模块通过 init() 自注册
	_ "shop_checkout/internal/domain/catalog"
	_ "shop_checkout/internal/domain/order"
	_ "shop_checkout/internal/domain/payment"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// .env 不存在时忽略，生产环境直接注入环境变量
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	if err := logger.InitLogger(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	db, err := database.InitDatabase(cfg.Database.DSN(), cfg.App.Debug, log.Named("database"))
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}

	rdb, err := database.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// 目录缓存不可用时直接查库
		log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		rdb = nil
	}

	collector := metrics.NewMetricsCollector()
	poolMonitor := database.NewPoolMonitor(sqlDB, collector, log.Named("database"), 0)
	poolMonitor.Start()

	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Fatal("init kafka publisher", zap.Error(err))
	}
	pool := worker.NewPool(worker.Options{
		Workers:   cfg.Worker.Workers,
		QueueSize: cfg.Worker.QueueSize,
		MaxRetry:  cfg.Worker.MaxRetry,
	}, log.Named("events"), eventHandlers(cfg, publisher, log)...)
	pool.Start()

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware(log.Named("http"), collector))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(db))
	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if err := registry.InitModules(&registry.ModuleContext{
		DB:      db,
		SQLX:    sqlx.NewDb(sqlDB, "postgres"),
		Redis:   rdb,
		Router:  r,
		Config:  cfg,
		Logger:  log,
		Metrics: collector,
		Events:  pool,
	}); err != nil {
		log.Fatal("init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	// 先停止接收请求，再排空事件队列
	pool.Stop()
	poolMonitor.Stop()
	if err := publisher.Close(); err != nil {
		log.Error("kafka close", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("db close", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// eventHandlers Kafka 始终挂载（未配置 broker 时为空实现），推送按凭证启用
func eventHandlers(cfg *config.Config, publisher events.Publisher, log *zap.Logger) []worker.Handler {
	handlers := []worker.Handler{
		worker.HandlerFunc{HandlerName: "kafka", Fn: publisher.Publish},
	}

	svc, err := push.NewAliyunPushService(cfg.Push)
	switch {
	case errors.Is(err, push.ErrNotConfigured):
		log.Info("aliyun push not configured, notifications disabled")
	case err != nil:
		log.Error("init aliyun push", zap.Error(err))
	default:
		handlers = append(handlers, push.NewOrderNotifier(svc))
	}
	return handlers
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
