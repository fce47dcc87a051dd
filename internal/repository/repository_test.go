package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormUserRepositoryFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash"}).
			AddRow("u1", "a@example.com", "A", "hash")
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).WillReturnRows(rows)

		user, err := repo.FindByID(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "a@example.com", user.Email)
	})

	t.Run("missing row translates to ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepositorySoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("marks the row deleted", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "users" SET "deleted_at"=\$1 WHERE id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.SoftDelete(ctx, "u1"))
	})

	t.Run("zero rows affected is ErrNotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "users" SET "deleted_at"=\$1 WHERE id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.SoftDelete(ctx, "gone"), ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepositoryRestore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "users" SET "deleted_at"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Restore(ctx, "u1"))

	mock.ExpectExec(`UPDATE "users" SET "deleted_at"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Restore(ctx, "gone"), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepositoryHardDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM "users" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.HardDelete(ctx, "u1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepositoryCountActiveByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// The default scope keeps soft-deleted rows out of the count.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1 AND "users"\."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	total, err := repo.CountActiveByEmail(ctx, "a@example.com", "")
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1 AND id <> \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	total, err = repo.CountActiveByEmail(ctx, "a@example.com", "self")
	require.NoError(t, err)
	require.Zero(t, total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUnitOfWork(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUnitOfWork(db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("commit on success, repositories join the tx", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("u1", "a@example.com"))
		mock.ExpectCommit()

		err := uow.Do(ctx, func(txCtx context.Context) error {
			_, err := repo.FindByID(txCtx, "u1")
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := uow.Do(ctx, func(context.Context) error { return boom })
		require.ErrorIs(t, err, boom)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSessionRepositoryRevoke(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now()

	// Only live rows are touched; revoking twice affects zero rows.
	mock.ExpectExec(`UPDATE "sessions" SET "revoked_at"=\$1 WHERE id = \$2 AND revoked_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Revoke(ctx, "s1", now))

	mock.ExpectExec(`UPDATE "sessions" SET "revoked_at"=\$1 WHERE id = \$2 AND revoked_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Revoke(ctx, "s1", now), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
