package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   int64
	Name string
}

func openTracedDB(t *testing.T, cfg telemetry.DBTracingConfig, log *zap.Logger) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, telemetry.NewDBTracingPlugin(cfg, log).Register(db))
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestDBTracingPlugin_RecordsSpans(t *testing.T) {
	sr := setupTestTracer(t)
	core, logs := observer.New(zap.WarnLevel)

	db := openTracedDB(t, telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Nanosecond}, zap.New(core))
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Name: "till"}).Error)
	var got tracedRow
	require.NoError(t, db.WithContext(ctx).First(&got, 1).Error)
	assert.Equal(t, "till", got.Name)

	assert.NotEmpty(t, sr.Ended(), "otelgorm should emit a span per statement")
	assert.NotZero(t, logs.FilterMessage("slow query").Len())
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTracedDB(t, telemetry.DBTracingConfig{}, zap.NewNop())

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{ID: 1, Name: "x"}).Error)
	assert.Empty(t, sr.Ended())
}
