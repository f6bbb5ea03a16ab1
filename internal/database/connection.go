// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deskhub/deskhub-backend/internal/config"
	"github.com/deskhub/deskhub-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.AffiliateLink{},
		&models.Template{},
		&models.TemplateItem{},
		&models.ViewEvent{},
		&models.ClickEvent{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Template indexes: the feed reads id DESC with an optional style filter
		"CREATE INDEX IF NOT EXISTS idx_templates_id_desc ON templates(id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_templates_style_id ON templates(style, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_templates_creator ON templates(creator_id)",

		// Event log indexes for counter reconciliation
		"CREATE INDEX IF NOT EXISTS idx_view_events_template ON view_events(template_id)",
		"CREATE INDEX IF NOT EXISTS idx_click_events_template ON click_events(template_id)",
		"CREATE INDEX IF NOT EXISTS idx_click_events_product ON click_events(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_click_events_platform ON click_events(platform)",

		// Full-text search index for the product catalog
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('english', name || ' ' || COALESCE(brand, '')))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData runs as one transaction: a half-seeded catalog would leave
// the configurator unable to resolve its role categories.
func SeedInitialData(db *gorm.DB, cfg *config.Config) error {
	log.Println("Seeding initial data...")

	err := WithTransaction(db, func(tx *gorm.DB) error {
		// The configurator resolves roles by category name, so the three role
		// categories must exist before it can answer.
		roleCategories := []models.Category{
			{Name: cfg.Configurator.DeskCategory, Description: "Desks and tables"},
			{Name: cfg.Configurator.ChairCategory, Description: "Office and gaming chairs"},
			{Name: cfg.Configurator.MonitorCategory, Description: "Monitors and displays"},
		}

		for _, category := range roleCategories {
			var count int64
			tx.Model(&models.Category{}).Where("name = ?", category.Name).Count(&count)
			if count == 0 {
				if err := tx.Create(&category).Error; err != nil {
					return fmt.Errorf("failed to seed category %s: %w", category.Name, err)
				}
			}
		}

		// Create default admin user
		var adminCount int64
		tx.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

		if adminCount == 0 {
			admin := &models.User{
				Username: "admin",
				Email:    "admin@deskhub.io",
				Role:     models.UserRoleAdmin,
			}

			if err := admin.SetPassword("admin123!@#"); err != nil {
				return fmt.Errorf("failed to set admin password: %w", err)
			}

			if err := tx.Create(admin).Error; err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}

			log.Println("Default admin user created successfully")
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
