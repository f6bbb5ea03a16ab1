// internal/database/connection_test.go
package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deskhub/deskhub-backend/internal/config"
	"github.com/deskhub/deskhub-backend/internal/models"
)

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}))
	return db
}

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	db := newSeedTestDB(t)
	cfg := &config.Config{
		Configurator: config.ConfiguratorConfig{
			DeskCategory:    "desk",
			ChairCategory:   "chair",
			MonitorCategory: "monitor",
		},
	}

	require.NoError(t, SeedInitialData(db, cfg))
	require.NoError(t, SeedInitialData(db, cfg))

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(3), categories)

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := newSeedTestDB(t)

	boom := errors.New("boom")
	err := WithTransaction(db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&models.Category{Name: "ephemeral"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWithTransactionCommits(t *testing.T) {
	db := newSeedTestDB(t)

	err := WithTransaction(db, func(tx *gorm.DB) error {
		return tx.Create(&models.Category{Name: "durable"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Where("name = ?", "durable").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
