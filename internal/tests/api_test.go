// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deskhub/deskhub-backend/internal/config"
	"github.com/deskhub/deskhub-backend/internal/handlers"
	"github.com/deskhub/deskhub-backend/internal/middleware"
	"github.com/deskhub/deskhub-backend/internal/models"
	"github.com/deskhub/deskhub-backend/internal/services"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

// APITestSuite exercises the public HTTP contract end to end: real
// handlers, real services, in-memory database. Rate limiting is left off
// so assertions stay deterministic.
type APITestSuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	cfg        *config.Config
	creator    *models.User
	token      string
	adminToken string
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	s.cfg = &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "api-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Configurator: config.ConfiguratorConfig{
			DeskCategory:     "desk",
			ChairCategory:    "chair",
			MonitorCategory:  "monitor",
			FeedDefaultLimit: 10,
		},
	}
	utils.SetJWTSecret(s.cfg.JWT.SecretKey)
}

func (s *APITestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	s.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.AffiliateLink{},
		&models.Template{},
		&models.TemplateItem{},
		&models.ViewEvent{},
		&models.ClickEvent{},
	))

	s.db = db
	s.router = s.buildRouter()
	s.seed()
}

func (s *APITestSuite) buildRouter() *gin.Engine {
	storageService, err := services.NewStorageService(s.cfg)
	s.Require().NoError(err)

	authService := services.NewAuthService(s.db, s.cfg)
	productService := services.NewProductService(s.db)
	templateService := services.NewTemplateService(s.db)
	feedService := services.NewFeedService(s.db, s.cfg.Configurator.FeedDefaultLimit)
	trackingService := services.NewTrackingService(s.db)
	configuratorService := services.NewConfiguratorService(
		s.db, productService, s.cfg.Configurator, services.CheapestStrategy{})

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	templateHandler := handlers.NewTemplateHandler(templateService, storageService)
	feedHandler := handlers.NewFeedHandler(feedService)
	trackingHandler := handlers.NewTrackingHandler(trackingService)
	configuratorHandler := handlers.NewConfiguratorHandler(configuratorService)

	r := gin.New()
	r.Use(middleware.I18nMiddleware())

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
	}

	r.GET("/feed", feedHandler.GetFeed)

	templates := r.Group("/templates")
	{
		templates.GET("", templateHandler.ListTemplates)
		templates.GET("/:id", templateHandler.GetTemplate)

		protected := templates.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("", templateHandler.CreateTemplate)
			protected.PUT("/:id", templateHandler.UpdateTemplate)
			protected.DELETE("/:id", templateHandler.DeleteTemplate)
		}
	}

	r.GET("/products/:id", productHandler.GetProduct)
	r.GET("/categories", productHandler.GetCategories)
	r.POST("/categories", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.CreateCategory)

	r.POST("/configurator/recommendations", configuratorHandler.GenerateRecommendations)

	track := r.Group("/track")
	track.Use(middleware.OptionalAuth())
	{
		track.POST("/view", trackingHandler.TrackView)
		track.POST("/click", trackingHandler.TrackClick)
	}

	return r
}

func (s *APITestSuite) seed() {
	creator := &models.User{
		Username: "workspace_pro",
		Email:    "pro@example.com",
		Role:     models.UserRoleCreator,
	}
	s.Require().NoError(creator.SetPassword("Str0ng!Pass"))
	s.Require().NoError(s.db.Create(creator).Error)
	s.creator = creator

	token, err := utils.GenerateJWT(creator.ID, creator.Username, string(creator.Role), 1)
	s.Require().NoError(err)
	s.token = token

	admin := &models.User{
		Username: "site_admin",
		Email:    "admin@example.com",
		Role:     models.UserRoleAdmin,
	}
	s.Require().NoError(admin.SetPassword("Str0ng!Pass"))
	s.Require().NoError(s.db.Create(admin).Error)

	adminToken, err := utils.GenerateJWT(admin.ID, admin.Username, string(admin.Role), 1)
	s.Require().NoError(err)
	s.adminToken = adminToken

	desk := &models.Category{Name: "desk"}
	chair := &models.Category{Name: "chair"}
	monitor := &models.Category{Name: "monitor"}
	s.Require().NoError(s.db.Create(desk).Error)
	s.Require().NoError(s.db.Create(chair).Error)
	s.Require().NoError(s.db.Create(monitor).Error)

	products := []*models.Product{
		{Name: "Compact Desk", CategoryID: desk.ID, Price: 400, Currency: "CNY", Specs: models.JSONB{"width": 60}, IsActive: true},
		{Name: "Wide Desk", CategoryID: desk.ID, Price: 350, Currency: "CNY", Specs: models.JSONB{"width": 120}, IsActive: true},
		{Name: "Task Chair", CategoryID: chair.ID, Price: 250, Currency: "CNY", IsActive: true},
		{Name: "27in Monitor", CategoryID: monitor.ID, Price: 450, Currency: "CNY", IsActive: true},
	}
	for _, p := range products {
		s.Require().NoError(s.db.Create(p).Error)
	}

	for i := 0; i < 5; i++ {
		style := "minimal"
		if i%2 == 1 {
			style = "gaming"
		}
		tpl := &models.Template{
			CreatorID: creator.ID,
			Title:     fmt.Sprintf("Setup %d", i),
			Style:     style,
		}
		s.Require().NoError(s.db.Create(tpl).Error)
	}
}

func (s *APITestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var payload map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func (s *APITestSuite) TestFeedPaginationContract() {
	w := s.request(http.MethodGet, "/feed?limit=2", nil, "")
	s.Equal(http.StatusOK, w.Code)

	page := s.decode(w)
	data := page["data"].([]interface{})
	s.Len(data, 2)
	s.Equal(true, page["has_more"])
	s.NotNil(page["next_cursor"])

	// Newest first.
	first := data[0].(map[string]interface{})
	s.Equal("Setup 4", first["title"])

	// Follow the cursor to the end of the feed.
	cursor := page["next_cursor"].(float64)
	seen := len(data)
	for page["has_more"] == true {
		w = s.request(http.MethodGet, fmt.Sprintf("/feed?limit=2&cursor=%.0f", cursor), nil, "")
		s.Equal(http.StatusOK, w.Code)
		page = s.decode(w)
		seen += len(page["data"].([]interface{}))
		if page["next_cursor"] != nil {
			cursor = page["next_cursor"].(float64)
		}
	}
	s.Equal(5, seen)
}

func (s *APITestSuite) TestFeedStyleFilter() {
	w := s.request(http.MethodGet, "/feed?style=gaming", nil, "")
	s.Equal(http.StatusOK, w.Code)

	page := s.decode(w)
	data := page["data"].([]interface{})
	s.Len(data, 2)
	for _, item := range data {
		s.Equal("gaming", item.(map[string]interface{})["style"])
	}
}

func (s *APITestSuite) TestFeedRejectsBadLimit() {
	s.Equal(http.StatusBadRequest, s.request(http.MethodGet, "/feed?limit=0", nil, "").Code)
	s.Equal(http.StatusBadRequest, s.request(http.MethodGet, "/feed?limit=abc", nil, "").Code)
	s.Equal(http.StatusBadRequest, s.request(http.MethodGet, "/feed?cursor=-1", nil, "").Code)
}

func (s *APITestSuite) TestTemplateDetailBumpsViews() {
	var tpl models.Template
	s.Require().NoError(s.db.First(&tpl).Error)

	w := s.request(http.MethodGet, fmt.Sprintf("/templates/%d", tpl.ID), nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), s.decode(w)["views"])

	w = s.request(http.MethodGet, fmt.Sprintf("/templates/%d", tpl.ID), nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(float64(2), s.decode(w)["views"])
}

func (s *APITestSuite) TestTemplateDetailNotFound() {
	s.Equal(http.StatusNotFound, s.request(http.MethodGet, "/templates/99999", nil, "").Code)
	s.Equal(http.StatusBadRequest, s.request(http.MethodGet, "/templates/abc", nil, "").Code)
}

func (s *APITestSuite) TestTrackViewBeacon() {
	var tpl models.Template
	s.Require().NoError(s.db.First(&tpl).Error)

	w := s.request(http.MethodPost, "/track/view", gin.H{"template_id": tpl.ID}, "")
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal("ok", body["status"])
	s.Equal(float64(1), body["views"])

	// Unknown template is the one tracking case that 404s.
	w = s.request(http.MethodPost, "/track/view", gin.H{"template_id": 99999}, "")
	s.Equal(http.StatusNotFound, w.Code)

	// Missing template_id fails binding.
	w = s.request(http.MethodPost, "/track/view", gin.H{}, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestTrackViewAttributesAuthenticatedUser() {
	var tpl models.Template
	s.Require().NoError(s.db.First(&tpl).Error)

	w := s.request(http.MethodPost, "/track/view", gin.H{"template_id": tpl.ID}, s.token)
	s.Equal(http.StatusOK, w.Code)

	var event models.ViewEvent
	s.Require().NoError(s.db.First(&event).Error)
	s.Require().NotNil(event.UserID)
	s.Equal(s.creator.ID, *event.UserID)
}

func (s *APITestSuite) TestTrackClickBeacon() {
	var tpl models.Template
	s.Require().NoError(s.db.First(&tpl).Error)

	w := s.request(http.MethodPost, "/track/click", gin.H{
		"template_id": tpl.ID,
		"platform":    "taobao",
	}, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", s.decode(w)["status"])

	// Dangling template id: logged, never a 404.
	w = s.request(http.MethodPost, "/track/click", gin.H{
		"template_id": 99999,
		"platform":    "jd",
	}, "")
	s.Equal(http.StatusOK, w.Code)

	// Platform is mandatory.
	w = s.request(http.MethodPost, "/track/click", gin.H{"template_id": tpl.ID}, "")
	s.Equal(http.StatusBadRequest, w.Code)

	var events int64
	s.Require().NoError(s.db.Model(&models.ClickEvent{}).Count(&events).Error)
	s.Equal(int64(2), events)
}

func (s *APITestSuite) TestConfiguratorRecommendations() {
	w := s.request(http.MethodPost, "/configurator/recommendations", gin.H{
		"space_width": 90,
		"space_depth": 60,
		"budget":      2000,
		"style":       "minimal",
		"purpose":     "programming",
	}, "")
	s.Equal(http.StatusOK, w.Code)

	rec := s.decode(w)
	products := rec["products"].([]interface{})
	s.Len(products, 3)
	s.Equal(float64(400+250+450), rec["total_price"])
	s.Empty(rec["compatibility_issues"])
	s.Contains(rec["ai_message"], "minimal")

	// The 120cm desk must never appear in a 90cm space.
	for _, p := range products {
		s.NotEqual("Wide Desk", p.(map[string]interface{})["name"])
	}
}

func (s *APITestSuite) TestConfiguratorReportsIssues() {
	w := s.request(http.MethodPost, "/configurator/recommendations", gin.H{
		"space_width": 30,
		"space_depth": 60,
		"budget":      500,
		"style":       "minimal",
		"purpose":     "gaming",
	}, "")
	s.Equal(http.StatusOK, w.Code)

	rec := s.decode(w)
	s.Len(rec["products"].([]interface{}), 2)
	issues := rec["compatibility_issues"].([]interface{})
	s.Require().Len(issues, 2)
	s.Contains(issues[0], "No desk found")
	s.Contains(issues[1], "exceeds your budget")
}

func (s *APITestSuite) TestConfiguratorRejectsMalformedInput() {
	w := s.request(http.MethodPost, "/configurator/recommendations", gin.H{
		"space_width": 90,
		"space_depth": 60,
		"budget":      0,
		"style":       "minimal",
		"purpose":     "programming",
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestCreateTemplateRequiresAuth() {
	body := gin.H{"title": "New Setup", "style": "minimal"}

	s.Equal(http.StatusUnauthorized, s.request(http.MethodPost, "/templates", body, "").Code)

	w := s.request(http.MethodPost, "/templates", body, s.token)
	s.Equal(http.StatusCreated, w.Code)
}

func (s *APITestSuite) TestUpdateTemplateOwnership() {
	var tpl models.Template
	s.Require().NoError(s.db.First(&tpl).Error)

	other := &models.User{Username: "other", Email: "other@example.com", Role: models.UserRoleCreator}
	s.Require().NoError(other.SetPassword("Str0ng!Pass"))
	s.Require().NoError(s.db.Create(other).Error)
	otherToken, err := utils.GenerateJWT(other.ID, other.Username, string(other.Role), 1)
	s.Require().NoError(err)

	body := gin.H{"title": "Renamed"}
	w := s.request(http.MethodPut, fmt.Sprintf("/templates/%d", tpl.ID), body, otherToken)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/templates/%d", tpl.ID), body, s.token)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestCreateCategoryAdminOnly() {
	body := gin.H{"name": "accessories", "description": "Cable trays and stands"}

	s.Equal(http.StatusUnauthorized, s.request(http.MethodPost, "/categories", body, "").Code)
	s.Equal(http.StatusForbidden, s.request(http.MethodPost, "/categories", body, s.token).Code)

	w := s.request(http.MethodPost, "/categories", body, s.adminToken)
	s.Equal(http.StatusCreated, w.Code)

	// Duplicate names conflict.
	w = s.request(http.MethodPost, "/categories", body, s.adminToken)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *APITestSuite) TestAuthFlow() {
	w := s.request(http.MethodPost, "/auth/register", gin.H{
		"username": "newcomer",
		"email":    "newcomer@example.com",
		"password": "Str0ng!Pass",
	}, "")
	s.Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodPost, "/auth/login", gin.H{
		"email":    "newcomer@example.com",
		"password": "Str0ng!Pass",
	}, "")
	s.Equal(http.StatusOK, w.Code)

	s.Equal(http.StatusUnauthorized, s.request(http.MethodGet, "/auth/me", nil, "").Code)
	s.Equal(http.StatusOK, s.request(http.MethodGet, "/auth/me", nil, s.token).Code)
}
