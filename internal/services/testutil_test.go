// internal/services/testutil_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deskhub/deskhub-backend/internal/models"
)

// newTestDB opens a private in-memory database. The pool is pinned to a
// single connection so the memory database survives for the whole test
// and concurrent transactions serialize instead of tripping over SQLite
// write locking.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.AffiliateLink{},
		&models.Template{},
		&models.TemplateItem{},
		&models.ViewEvent{},
		&models.ClickEvent{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.UserRoleCreator,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, categoryID uint, price float64, specs models.JSONB) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:       name,
		CategoryID: categoryID,
		Price:      price,
		Currency:   "CNY",
		Specs:      specs,
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestTemplate(t *testing.T, db *gorm.DB, creatorID uint, title, style string) *models.Template {
	t.Helper()

	template := &models.Template{
		CreatorID: creatorID,
		Title:     title,
		Style:     style,
	}
	require.NoError(t, db.Create(template).Error)
	return template
}
