// internal/services/template_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/models"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

type TemplateService struct {
	db *gorm.DB
}

type TemplateItemRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

type CreateTemplateRequest struct {
	Title         string                `json:"title" validate:"required,min=1,max=255"`
	Description   string                `json:"description,omitempty"`
	Style         string                `json:"style,omitempty"`
	CoverImageURL string                `json:"cover_image_url,omitempty"`
	Items         []TemplateItemRequest `json:"items,omitempty"`
}

type UpdateTemplateRequest struct {
	Title         string                `json:"title" validate:"required,min=1,max=255"`
	Description   string                `json:"description,omitempty"`
	Style         string                `json:"style,omitempty"`
	CoverImageURL string                `json:"cover_image_url,omitempty"`
	Items         []TemplateItemRequest `json:"items,omitempty"`
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// GetTemplate returns the template detail and bumps its views counter as a
// side effect of the read. The bump is a single atomic column increment
// issued before the response, so concurrent detail reads cannot lose
// counts; no event row is written on this path (unlike /track/view).
func (s *TemplateService) GetTemplate(id uint) (*models.Template, error) {
	var template models.Template
	err := s.db.Preload("Creator").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("Items.Product.AffiliateLinks").
		First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&models.Template{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to increment view counter: %w", err)
	}

	// Report the post-increment value.
	template.Views++

	return &template, nil
}

func (s *TemplateService) ListTemplates(params utils.PaginationParams) ([]models.Template, int64, error) {
	query := s.db.Model(&models.Template{}).
		Preload("Creator").
		Preload("Items").
		Preload("Items.Product")

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	allowedSortFields := []string{"created_at", "views", "clicks", "title"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var templates []models.Template
	if err := query.Find(&templates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch templates: %w", err)
	}

	return templates, total, nil
}

func (s *TemplateService) CreateTemplate(creatorID uint, req *CreateTemplateRequest) (*models.Template, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	template := &models.Template{
		CreatorID:     creatorID,
		Title:         req.Title,
		Description:   req.Description,
		Style:         req.Style,
		CoverImageURL: req.CoverImageURL,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		return s.attachItems(tx, template.ID, req.Items)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(template.ID)
}

func (s *TemplateService) UpdateTemplate(id, userID uint, req *UpdateTemplateRequest) (*models.Template, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var template models.Template
	if err := s.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if template.CreatorID != userID {
		return nil, ErrNotOwner
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":           req.Title,
			"description":     req.Description,
			"style":           req.Style,
			"cover_image_url": req.CoverImageURL,
		}
		if err := tx.Model(&template).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}

		// Items are replaced wholesale.
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear template items: %w", err)
		}

		return s.attachItems(tx, id, req.Items)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(id)
}

func (s *TemplateService) DeleteTemplate(id, userID uint) error {
	var template models.Template
	if err := s.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if template.CreatorID != userID {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete template items: %w", err)
		}
		if err := tx.Delete(&template).Error; err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		return nil
	})
}

// attachItems links products to a template, silently skipping product ids
// that do not exist (matching the create-template contract: a stale
// product reference is not an error).
func (s *TemplateService) attachItems(tx *gorm.DB, templateID uint, items []TemplateItemRequest) error {
	for _, item := range items {
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return fmt.Errorf("database error: %w", err)
		}

		link := &models.TemplateItem{
			TemplateID: templateID,
			ProductID:  item.ProductID,
			PositionX:  item.PositionX,
			PositionY:  item.PositionY,
		}
		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("failed to attach template item: %w", err)
		}
	}
	return nil
}

func (s *TemplateService) reload(id uint) (*models.Template, error) {
	var template models.Template
	err := s.db.Preload("Creator").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("Items.Product.AffiliateLinks").
		First(&template, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload template: %w", err)
	}
	return &template, nil
}
