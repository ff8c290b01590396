package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// dryRunDB monta SQL sem conectar em nenhum banco.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 port=1 dbname=none"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestBackfillTimezone(t *testing.T) {
	db := dryRunDB(t)
	assert.NoError(t, backfillTimezone(db))
}

func TestBackfillTimezoneReturnsExecError(t *testing.T) {
	db := dryRunDB(t)
	boom := errors.New("relation does not exist")
	require.NoError(t, db.Callback().Raw().Before("gorm:raw").Register("test:fail", func(tx *gorm.DB) {
		_ = tx.AddError(boom)
	}))

	err := backfillTimezone(db)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "backfill window timezone")
}
