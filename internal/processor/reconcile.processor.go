package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/pkg/logger"
	"github.com/wanjohi/rent-reconciler/pkg/redis"
	"github.com/wanjohi/rent-reconciler/pkg/worker"
)

const ReconcileTimeout = time.Second * 5
const HealthInterval = time.Second * 30

type Reconciler interface {
	Reconcile(ctx context.Context, transactionID, ownerID uuid.UUID) (*model.Transaction, error)
}

type PendingLister interface {
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
	QueueSize int
	Lock      LockConfig
}

func DefaultConfig() Config {
	return Config{
		Interval:  time.Minute,
		BatchSize: 200,
		Workers:   20,
		QueueSize: 10_000,
		Lock:      DefaultLockConfig(),
	}
}

// Service sweeps pending transactions through the reconciliation pipeline on
// an interval. Each transaction is dispatched to the worker pool under a
// per-transaction Redis lock so several instances can run side by side.
type Service struct {
	reconciler Reconciler
	txns       PendingLister
	lock       *RunLock
	metrics    *ServiceMetrics
	config     Config
	worker     *worker.WorkerManager
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewService(reconciler Reconciler, txns PendingLister, redisAdapter redis.RedisAdapter, config Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		reconciler: reconciler,
		txns:       txns,
		lock:       NewRunLock(redisAdapter, config.Lock),
		metrics:    NewServiceMetrics(),
		config:     config,
		worker:     worker.NewWorkerManager(config.QueueSize, config.Workers, nil),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Service) Start() error {
	logger.Info("Starting Reconciler Service...")

	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("Worker manager stopped", "error", err)
		}
	}()

	s.wg.Add(2)
	go s.sweeper()
	go s.metricsReporter()

	logger.Info("Reconciler Service started", "workers", s.config.Workers, "interval", s.config.Interval)
	return nil
}

func (s *Service) sweeper() {
	defer s.wg.Done()

	// One sweep up front, then on the interval.
	s.sweep()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

// sweep pages through pending transactions and enqueues each one.
func (s *Service) sweep() {
	offset := 0
	for {
		txns, total, err := s.txns.List(s.ctx, model.TransactionFilter{
			Statuses: []model.ReconciliationStatus{model.StatusPending},
			Limit:    s.config.BatchSize,
			Offset:   offset,
		})
		if err != nil {
			logger.Error("Pending sweep failed", "error", err)
			return
		}
		if len(txns) == 0 {
			return
		}

		for _, txn := range txns {
			s.worker.Enqueue(txn)
		}

		offset += len(txns)
		if int64(offset) >= total {
			return
		}
	}
}

func (s *Service) workerHandler(workerIndex int, job interface{}) {
	txn, ok := job.(*model.Transaction)
	if !ok {
		logger.Error("Unexpected job type in worker queue")
		return
	}
	s.process(txn)
}

func (s *Service) process(txn *model.Transaction) {
	if err := s.lock.Acquire(txn.ID.String()); err != nil {
		if errors.Is(err, ErrLockAcquireFailed) {
			s.metrics.RecordSkipped()
			return
		}
		s.metrics.RecordFailure()
		return
	}
	defer s.lock.Release(txn.ID.String())

	ctx, cancel := context.WithTimeout(s.ctx, ReconcileTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.reconciler.Reconcile(ctx, txn.ID, txn.OwnerID)
	if err != nil {
		s.metrics.RecordFailure()
		logger.Error("Reconciliation failed", "transaction_id", txn.ID, "error", err)
		return
	}

	s.metrics.RecordSuccess(time.Since(start))
	logger.Info("Reconciled transaction",
		"transaction_id", txn.ID,
		"status", result.Status,
		"confidence", result.Confidence)
}

func (s *Service) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) reportMetrics() {
	stats := s.metrics.GetStats()
	logger.Info("Reconciler metrics",
		"total_reconciled", stats["total_reconciled"],
		"total_failed", stats["total_failed"],
		"total_skipped", stats["total_skipped"],
		"rate_per_second", stats["rate_per_second"],
		"avg_duration_ms", stats["avg_duration_ms"])
}

// Stop drains the worker pool and waits for background tasks.
func (s *Service) Stop() {
	logger.Info("Shutting down Reconciler Service...")

	s.cancel()
	s.worker.Exit()
	s.wg.Wait()

	s.reportMetrics()
	logger.Info("Reconciler Service stopped")
}
