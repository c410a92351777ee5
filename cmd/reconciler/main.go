package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wanjohi/rent-reconciler/internal/config"
	"github.com/wanjohi/rent-reconciler/internal/processor"
	"github.com/wanjohi/rent-reconciler/internal/repository"
	"github.com/wanjohi/rent-reconciler/internal/services"
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

	reconcileService := services.NewReconcileService(txnRepo, tenantRepo, paymentRepo, reminderRepo, settingsRepo, auditRepo)

	procConfig := processor.DefaultConfig()
	procConfig.Interval = config.Get().ReconcileInterval
	procConfig.BatchSize = config.Get().ReconcileBatchSize
	procConfig.Workers = config.Get().ReconcileWorkers
	procConfig.QueueSize = config.Get().ReconcileQueueSize
	procConfig.Lock.TTL = config.Get().ReconcileLockTTL

	service := processor.NewService(reconcileService, txnRepo, redisAdap, procConfig)

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := service.Start(); err != nil {
			logger.Error("failed to start reconciler", "error", err)
		}
	}()

	select {
	case <-c:
		service.Stop()
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
