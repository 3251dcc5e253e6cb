package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")

	t.Run("errors are logged with the request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		l.Trace(ctx, time.Now(), sqlFn("UPDATE products SET quantity=1", 0), errors.New("deadlock"))

		entries := recorded.FilterMessage("SQL error").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		l.Trace(ctx, time.Now(), sqlFn("SELECT * FROM customers", 0), gorm.ErrRecordNotFound)

		assert.Zero(t, recorded.Len())
	})

	t.Run("slow statements warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		l.Trace(ctx, time.Now().Add(-time.Second), sqlFn("SELECT 1", 1), nil)

		assert.Equal(t, 1, recorded.FilterMessage("slow SQL").Len())
	})

	t.Run("info level logs every statement at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, 0)

		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)

		entries := recorded.FilterMessage("SQL").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Silent, 0)

		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), errors.New("boom"))

		assert.Zero(t, recorded.Len())
	})
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l := NewGormLogger(nil, gormlogger.Info, 0)
	quiet := l.LogMode(gormlogger.Error).(*GormLogger)

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, gormlogger.Error, quiet.level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
