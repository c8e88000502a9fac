package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/shared/config"
)

// stubOpen routes openDB to a sqlmock database that monitors pings.
func stubOpen(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	prev := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		return mockDB, nil
	}
	t.Cleanup(func() {
		openDB = prev
		_ = mockDB.Close()
	})
	return mock
}

func resetShared(t *testing.T) {
	t.Helper()
	sharedMu.Lock()
	sharedDB = nil
	sharedMu.Unlock()
	t.Cleanup(func() {
		sharedMu.Lock()
		sharedDB = nil
		sharedMu.Unlock()
	})
}

func TestPoolForAppliesOverrides(t *testing.T) {
	p := PoolFor(ProfileServer, config.PoolConfig{MaxOpenConns: 7, ConnMaxIdleTime: 45 * time.Second})
	assert.Equal(t, 7, p.MaxOpenConns)
	assert.Equal(t, 5, p.MaxIdleConns)
	assert.Equal(t, 45*time.Second, p.ConnMaxIdleTime)
	assert.Equal(t, time.Hour, p.ConnMaxLifetime)

	lambda := PoolFor(ProfileLambda, config.PoolConfig{})
	assert.Equal(t, 2, lambda.MaxOpenConns)
	assert.Equal(t, 3*time.Second, lambda.PingTimeout)

	clamped := PoolFor(ProfileMigrate, config.PoolConfig{MaxIdleConns: 4})
	assert.Equal(t, 1, clamped.MaxIdleConns)

	unknown := PoolFor(Profile("batch"), config.PoolConfig{})
	assert.Equal(t, PoolFor(ProfileServer, config.PoolConfig{}), unknown)
}

func TestDetectProfile(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	assert.Equal(t, ProfileServer, DetectProfile())
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "resume-builder-api")
	assert.Equal(t, ProfileLambda, DetectProfile())
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "postgres"}, ProfileServer)
	assert.ErrorIs(t, err, ErrNoDatabaseURL)
}

func TestOpenPingsAndSizesPool(t *testing.T) {
	mock := stubOpen(t)
	mock.ExpectPing()

	cfg := config.StorageConfig{
		DatabaseURL: "postgres://resumes@localhost/resumes",
		Pool:        config.PoolConfig{MaxOpenConns: 3},
	}
	database, err := Open(context.Background(), cfg, ProfileServer)
	require.NoError(t, err)
	assert.Equal(t, 3, database.Stats().MaxOpenConnections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenClosesOnPingFailure(t *testing.T) {
	mock := stubOpen(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	_, err := Open(context.Background(), config.StorageConfig{DatabaseURL: "postgres://x"}, ProfileMigrate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSharedRetriesThenReuses(t *testing.T) {
	resetShared(t)
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	mock.ExpectPing()

	calls := 0
	prev := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("dns not ready")
		}
		return mockDB, nil
	}
	t.Cleanup(func() { openDB = prev })

	cfg := config.StorageConfig{DatabaseURL: "postgres://x"}
	_, err = Shared(context.Background(), cfg, ProfileLambda)
	require.Error(t, err)

	first, err := Shared(context.Background(), cfg, ProfileLambda)
	require.NoError(t, err)
	second, err := Shared(context.Background(), cfg, ProfileLambda)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, calls)
}
