// internal/services/feed_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/models"
)

// FeedService serves the discovery feed: templates ordered newest-first
// with cursor pagination. The cursor is the id of the last item of the
// previous page; only templates with a strictly smaller id are eligible,
// so a reader walking "older" pages never sees duplicates or skips even
// while new templates keep arriving at the head.
type FeedService struct {
	db           *gorm.DB
	defaultLimit int
}

type FeedPage struct {
	Data       []models.Template `json:"data"`
	NextCursor *uint             `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

func NewFeedService(db *gorm.DB, defaultLimit int) *FeedService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &FeedService{
		db:           db,
		defaultLimit: defaultLimit,
	}
}

func (s *FeedService) DefaultLimit() int {
	return s.defaultLimit
}

// GetFeed returns one page of templates. A nil cursor starts from the
// newest template. An unknown style yields an empty page, and a cursor
// pointing at a deleted id simply resumes just below that value.
func (s *FeedService) GetFeed(cursor *uint, style string, limit int) (*FeedPage, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	query := s.db.Model(&models.Template{}).
		Preload("Creator").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("Items.Product.AffiliateLinks")

	if style != "" {
		query = query.Where("style = ?", style)
	}

	if cursor != nil {
		query = query.Where("id < ?", *cursor)
	}

	var templates []models.Template
	if err := query.Order("id DESC").Limit(limit).Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch feed page: %w", err)
	}

	page := &FeedPage{Data: templates}

	if len(templates) > 0 {
		last := templates[len(templates)-1].ID
		page.NextCursor = &last
	}

	// A short page unambiguously signals exhaustion.
	page.HasMore = page.NextCursor != nil && len(templates) == limit

	return page, nil
}
