// cmd/promo-service/main.go
package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"promos/internal/pkg/bootstrap"
	"promos/internal/pkg/logger"
	"promos/internal/pkg/mq"
	pkgredis "promos/internal/pkg/redis"
	"promos/internal/service/promo/application"
	"promos/internal/service/promo/infrastructure"
	"promos/internal/service/promo/infrastructure/adapter"
	"promos/internal/service/promo/infrastructure/rule"
	"promos/internal/service/promo/interfaces"
	"promos/internal/service/promo/port"
)

const serviceName = "promo-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	// 1. 存储
	db, err := infrastructure.NewDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize database")
	}
	promoRepo := infrastructure.NewGormPromoRepository(db)
	answerRepo := infrastructure.NewGormAnswerRepository(db)

	// 2. 重复报名防护，按配置选择 Redis 或 ZooKeeper 实现
	var (
		guard       port.EntryGuard
		redisClient *pkgredis.Client
		zkGuard     *adapter.EntryZkAdapter
	)
	switch cfg.Promo.EntryGuard {
	case "zookeeper":
		zkGuard, err = adapter.NewEntryZkAdapter(cfg.Infra.Zookeeper.Servers)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to initialize zookeeper entry guard")
		}
		guard = zkGuard
	default:
		redisClient, err = pkgredis.NewClient(context.Background(), cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to initialize redis client")
		}
		guard, err = adapter.NewEntryRedisAdapter(redisClient)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to initialize redis entry guard")
		}
	}

	// 3. 确认邮件事件生产者
	writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.ConfirmationTopic)
	notifier := adapter.NewConfirmationKafkaAdapter(writer)

	// 4. 准入规则引擎
	ruleEngine, err := rule.NewCELRuleEngineAdapter()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize rule engine")
	}

	// 5. 应用服务与 HTTP 接口
	promoService := application.NewPromoService(promoRepo, answerRepo, guard, ruleEngine, notifier, tracer)
	adminService := application.NewAdminService(promoRepo, answerRepo, tracer)
	promoHandler := interfaces.NewPromoHandler(promoService)
	adminHandler := interfaces.NewAdminHandler(adminService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8087,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			promoHandler.RegisterRoutes(appCtx.Mux)
			adminHandler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := notifier.Close(); err != nil {
				logger.L().Error().Err(err).Msg("error closing kafka writer")
			}
			if redisClient != nil {
				_ = redisClient.Close()
			}
			if zkGuard != nil {
				zkGuard.Close()
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	})
}
