// internal/router/router.go
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/config"
	"github.com/deskhub/deskhub-backend/internal/handlers"
	"github.com/deskhub/deskhub-backend/internal/middleware"
	"github.com/deskhub/deskhub-backend/internal/services"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage service: %w", err)
	}

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	templateService := services.NewTemplateService(db)
	feedService := services.NewFeedService(db, cfg.Configurator.FeedDefaultLimit)
	trackingService := services.NewTrackingService(db)
	configuratorService := services.NewConfiguratorService(
		db,
		productService,
		cfg.Configurator,
		services.NewRandomStrategy(time.Now().UnixNano()),
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	templateHandler := handlers.NewTemplateHandler(templateService, storageService)
	feedHandler := handlers.NewFeedHandler(feedService)
	trackingHandler := handlers.NewTrackingHandler(trackingService)
	configuratorHandler := handlers.NewConfiguratorHandler(configuratorService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Authentication routes
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
	}

	// Discovery feed
	r.GET("/feed", feedHandler.GetFeed)

	// Template routes
	templates := r.Group("/templates")
	{
		templates.GET("", templateHandler.ListTemplates)
		templates.GET("/:id", templateHandler.GetTemplate)

		// Authenticated routes
		protected := templates.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("", templateHandler.CreateTemplate)
			protected.PUT("/:id", templateHandler.UpdateTemplate)
			protected.DELETE("/:id", templateHandler.DeleteTemplate)
			protected.POST("/upload-cover", middleware.UploadRateLimit(), templateHandler.UploadCoverImage)
		}
	}

	// Product catalog routes
	products := r.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", middleware.AuthRequired(), productHandler.CreateProduct)
	}

	r.GET("/categories", productHandler.GetCategories)
	r.POST("/categories", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.CreateCategory)

	// Configurator
	configurator := r.Group("/configurator")
	{
		configurator.POST("/recommendations", configuratorHandler.GenerateRecommendations)
	}

	// Tracking beacons: anonymous but attributed to a user when a token
	// is present.
	track := r.Group("/track")
	track.Use(middleware.TrackingRateLimit(), middleware.OptionalAuth())
	{
		track.POST("/view", trackingHandler.TrackView)
		track.POST("/click", trackingHandler.TrackClick)
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, nil
}
