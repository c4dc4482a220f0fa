// internal/services/coin_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func coinAccountColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "seller_id", "redeemable_balance", "total_earned", "total_redeemed"}
}

func TestCoinStoreDebitBalance(t *testing.T) {
	sellerID := uuid.New()

	t.Run("debits when balance is sufficient", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := newGormCoinStore(db)

		mock.ExpectExec(`UPDATE "seller_coins" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.DebitBalance(sellerID, 500)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects overdraft", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := newGormCoinStore(db)

		// The WHERE guard matched no row, so the debit must not happen.
		mock.ExpectExec(`UPDATE "seller_coins" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.DebitBalance(sellerID, 500)
		assert.ErrorIs(t, err, commission.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCoinStoreCreditBalanceMissingAccount(t *testing.T) {
	db, mock := newMockDB(t)
	store := newGormCoinStore(db)

	mock.ExpectExec(`UPDATE "seller_coins" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CreditBalance(uuid.New(), 100)
	assert.ErrorIs(t, err, commission.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoinStoreBalanceMissingAccount(t *testing.T) {
	db, mock := newMockDB(t)
	store := newGormCoinStore(db)

	// No coin account yet reads as a zero balance, not an error.
	mock.ExpectQuery(`SELECT \* FROM "seller_coins"`).
		WillReturnRows(sqlmock.NewRows(coinAccountColumns()))

	balance, err := store.Balance(uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, float64(0), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAccountRecoversFromDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCoinService(db, &config.Config{})
	sellerID := uuid.New()
	accountID := uuid.New()

	// First lookup misses, the insert loses a race on the unique index,
	// and the winner's row is returned instead.
	mock.ExpectQuery(`SELECT \* FROM "seller_coins"`).
		WillReturnRows(sqlmock.NewRows(coinAccountColumns()))
	mock.ExpectQuery(`INSERT INTO "seller_coins"`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT \* FROM "seller_coins"`).
		WillReturnRows(sqlmock.NewRows(coinAccountColumns()).
			AddRow(accountID, time.Now(), time.Now(), nil, sellerID, 250.0, 400.0, 150.0))

	account, err := svc.EnsureAccount(sellerID)
	require.NoError(t, err)
	assert.Equal(t, accountID, account.ID)
	assert.Equal(t, 250.0, account.RedeemableBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}
