package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kaizen-server/internal/infrastructure/database/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(Config{
		File:     filepath.Join(t.TempDir(), "kaizens.db"),
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(context.Background(), db, zerolog.Nop()))
	return db
}

func TestSeedSampleData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedSampleData(ctx, db, zerolog.Nop()))

	var kaizenCount, planCount int64
	require.NoError(t, db.Model(&entities.Kaizen{}).Count(&kaizenCount).Error)
	require.NoError(t, db.Model(&entities.ActionPlan{}).Count(&planCount).Error)
	assert.EqualValues(t, 3, kaizenCount)
	assert.EqualValues(t, 4, planCount)

	var first entities.Kaizen
	require.NoError(t, db.First(&first, 1).Error)
	assert.Equal(t, "KZ-000001", first.KaizenNumber)
	assert.Equal(t, "Quick", first.TypeName)
}

func TestSeedSampleDataIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedSampleData(ctx, db, zerolog.Nop()))
	require.NoError(t, SeedSampleData(ctx, db, zerolog.Nop()))

	var count int64
	require.NoError(t, db.Model(&entities.Kaizen{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
