package repository

import (
	"context"
	"testing"

	"travelbooking/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

func TestReservationRepository_Postgres_StaleStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectExec(`UPDATE "reservations" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "r-1", domain.ReservationPending, domain.ReservationConfirmed, "")
	assert.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Postgres_DriverErrorsPassThrough(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	mock.ExpectExec(`UPDATE "reservations" SET`).WillReturnError(serialization)
	mock.ExpectExec(`DELETE FROM "reservations"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "r-1", domain.ReservationPending, domain.ReservationCancelled, "Sold out")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleStatus)
	assert.False(t, isUniqueViolation(err))

	assert.ErrorIs(t, repo.Delete(context.Background(), "r-1"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Postgres_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "reservations"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate_DuplicateKeys(t *testing.T) {
	pgDup := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.ErrorIs(t, translate(pgDup), ErrDuplicate)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicate)
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.NoError(t, translate(nil))
}
