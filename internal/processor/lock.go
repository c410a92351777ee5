package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/wanjohi/rent-reconciler/pkg/logger"
	"github.com/wanjohi/rent-reconciler/pkg/redis"
)

var ErrLockAcquireFailed = errors.New("failed to acquire reconciliation lock")

type LockConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

func DefaultLockConfig() LockConfig {
	return LockConfig{
		TTL:       30 * time.Second,
		KeyPrefix: "reconcile:lock:",
	}
}

// RunLock serialises reconciliation per transaction across instances. The
// pipeline itself is idempotent through terminal statuses; the lock only
// stops two workers from burning the same work at once.
type RunLock struct {
	redis  redis.RedisAdapter
	config LockConfig
}

func NewRunLock(redisAdapter redis.RedisAdapter, config LockConfig) *RunLock {
	return &RunLock{
		redis:  redisAdapter,
		config: config,
	}
}

func (l *RunLock) Acquire(transactionID string) error {
	lockKey := l.config.KeyPrefix + transactionID
	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))

	acquired, err := l.redis.SetNX(lockKey, lockValue, l.config.TTL)
	if err != nil {
		logger.Error("Failed to acquire lock", "transaction_id", transactionID, "error", err)
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		logger.Debug("Lock already held by another worker", "transaction_id", transactionID)
		return ErrLockAcquireFailed
	}
	return nil
}

func (l *RunLock) Release(transactionID string) {
	lockKey := l.config.KeyPrefix + transactionID
	if err := l.redis.Del(lockKey); err != nil {
		logger.Warn("Failed to release lock", "transaction_id", transactionID, "error", err)
	}
}
