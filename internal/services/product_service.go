// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/models"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

// ProductService is the catalog read/write layer. The feed and the
// configurator consume it read-only.
type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name           string                 `json:"name" validate:"required,min=1,max=255"`
	Brand          string                 `json:"brand,omitempty"`
	CategoryID     uint                   `json:"category_id" validate:"required"`
	Price          float64                `json:"price" validate:"required,min=0"`
	Currency       string                 `json:"currency,omitempty"`
	ImageURL       string                 `json:"image_url,omitempty"`
	Specs          map[string]interface{} `json:"specs,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	AffiliateLinks []AffiliateLinkRequest `json:"affiliate_links,omitempty"`
}

type AffiliateLinkRequest struct {
	Platform      string  `json:"platform" validate:"required"`
	URL           string  `json:"url" validate:"required,url"`
	CommissionPct float64 `json:"commission_pct" validate:"min=0"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Active   *bool    `json:"active,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Category").Preload("AffiliateLinks").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Preload("Category").Preload("AffiliateLinks")

	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	} else {
		// Default to active products only
		query = query.Where("is_active = ?", true)
	}

	if params.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	if len(params.Tags) > 0 {
		query = query.Where("tags && ?", pq.Array(params.Tags))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// ActiveProductsByCategoryName resolves a category by name and returns its
// active products. The configurator depends on this for role resolution;
// resolving by name keeps category ids out of the selection logic.
func (s *ProductService) ActiveProductsByCategoryName(name string) ([]models.Product, error) {
	var category models.Category
	if err := s.db.Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var products []models.Product
	err := s.db.Preload("Category").Preload("AffiliateLinks").
		Where("category_id = ? AND is_active = ?", category.ID, true).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products for category %s: %w", name, err)
	}

	return products, nil
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var category models.Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "CNY"
	}

	product := &models.Product{
		Name:       req.Name,
		Brand:      req.Brand,
		CategoryID: req.CategoryID,
		Price:      req.Price,
		Currency:   currency,
		ImageURL:   req.ImageURL,
		Specs:      models.JSONB(req.Specs),
		Tags:       req.Tags,
		IsActive:   true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		for _, link := range req.AffiliateLinks {
			affiliate := &models.AffiliateLink{
				ProductID:     product.ID,
				Platform:      link.Platform,
				URL:           link.URL,
				CommissionPct: link.CommissionPct,
			}
			if err := tx.Create(affiliate).Error; err != nil {
				return fmt.Errorf("failed to create affiliate link: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Category").Preload("AffiliateLinks").First(product, product.ID)

	return product, nil
}

// CreateCategory adds a catalog category. Names are unique; the
// configurator's role categories are seeded at startup, this covers the
// rest of the taxonomy.
func (s *ProductService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var existing models.Category
	err := s.db.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return nil, ErrCategoryExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *ProductService) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}
