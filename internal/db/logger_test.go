package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), 50*time.Millisecond)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, nil)
	assert.Zero(t, buf.Len(), "fast query is not logged at warn level")

	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len())

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Contains(t, buf.String(), "query failed")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Zero(t, buf.Len())
}
