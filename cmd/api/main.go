package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wanjohi/rent-reconciler/internal/config"
	"github.com/wanjohi/rent-reconciler/internal/handlers"
	"github.com/wanjohi/rent-reconciler/internal/ratelimit"
	"github.com/wanjohi/rent-reconciler/internal/repository"
	"github.com/wanjohi/rent-reconciler/internal/services"
	xhttp "github.com/wanjohi/rent-reconciler/pkg/http"
	"github.com/wanjohi/rent-reconciler/pkg/logger"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
	"github.com/wanjohi/rent-reconciler/pkg/prom"
	"github.com/wanjohi/rent-reconciler/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	txnRepo := repository.NewTransactionRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	auditRepo := repository.NewReconciliationLogRepository(db)

	// services
	ingestService := services.NewIngestService(txnRepo)
	reconcileService := services.NewReconcileService(txnRepo, tenantRepo, paymentRepo, reminderRepo, settingsRepo, auditRepo)
	healthService := services.NewHealthService(db)

	webhookLimiter := ratelimit.NewLimiter(redisAdap, "rl:webhook",
		config.Get().WebhookRateLimit, config.Get().WebhookRateWindow)

	// v1 handlers
	txnHandler := handlers.NewTransactionHandler(ingestService, reconcileService, txnRepo, auditRepo)
	txnHandler.SetRateLimiter(webhookLimiter)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterTransactionRoutes(g, txnHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	if config.Get().AppDebugMetricsAddr != "" {
		hostname, herr := os.Hostname()
		if herr != nil {
			hostname = "unknown"
		}
		if err := prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed to create prometheus metrics", "error", err)
			return
		}
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}()
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
