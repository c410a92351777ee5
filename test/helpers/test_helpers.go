package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wanjohi/rent-reconciler/internal/repository"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
	"github.com/wanjohi/rent-reconciler/pkg/redis"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.TransactionEntity{},
		&repository.TenantEntity{},
		&repository.UnitEntity{},
		&repository.PaymentEntity{},
		&repository.ReminderEntity{},
		&repository.ReconciliationLogEntity{},
		&repository.OwnerSettingsEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	adapter, err := redis.NewRedisAdapter("helpers-"+t.Name(), "test", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestUnit(t *testing.T, db *pg.DB, unitNumber string) *repository.UnitEntity {
	ctx := context.Background()
	unit := &repository.UnitEntity{
		ID:         uuid.New(),
		UnitNumber: unitNumber,
	}
	err := db.Write(ctx).Create(unit).Error
	require.NoError(t, err)
	return unit
}

func CreateTestTenant(t *testing.T, db *pg.DB, ownerID uuid.UUID, unit *repository.UnitEntity, fullName, phone string, rent decimal.Decimal) *repository.TenantEntity {
	ctx := context.Background()
	tenant := &repository.TenantEntity{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		FullName:   fullName,
		Phone:      phone,
		RentAmount: rent,
		Status:     "active",
	}
	if unit != nil {
		tenant.UnitID = &unit.ID
	}
	err := db.Write(ctx).Create(tenant).Error
	require.NoError(t, err)
	return tenant
}

func CreateTestTransaction(t *testing.T, db *pg.DB, ownerID uuid.UUID, receipt, phone string, amount decimal.Decimal, date time.Time) *repository.TransactionEntity {
	ctx := context.Background()
	txn := &repository.TransactionEntity{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		ReceiptNumber:   receipt,
		PhoneNumber:     phone,
		Amount:          amount,
		TransactionDate: date,
		Status:          "pending",
	}
	err := db.Write(ctx).Create(txn).Error
	require.NoError(t, err)
	return txn
}

func CreateTestReminder(t *testing.T, db *pg.DB, ownerID, tenantID uuid.UUID, month string, status string) *repository.ReminderEntity {
	ctx := context.Background()
	reminder := &repository.ReminderEntity{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		TenantID:       tenantID,
		Status:         status,
		ReferenceMonth: month,
		ScheduledFor:   time.Now().Add(24 * time.Hour),
		Message:        "Rent for " + month + " is due",
	}
	err := db.Write(ctx).Create(reminder).Error
	require.NoError(t, err)
	return reminder
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
