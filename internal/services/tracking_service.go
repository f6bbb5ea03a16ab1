// internal/services/tracking_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/models"
)

// TrackingService is the only writer of the engagement event log and of
// the denormalized counters derived from it. Counter updates are always
// issued as atomic column increments, never read-modify-write, so
// concurrent trackers cannot lose updates.
type TrackingService struct {
	db *gorm.DB
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{db: db}
}

// RecordView appends a ViewEvent and bumps the template's views counter as
// one transaction. Returns the counter value after the increment.
func (s *TrackingService) RecordView(templateID uint, userID *uint) (int64, error) {
	var views int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var template models.Template
		if err := tx.Select("id").First(&template, templateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		event := &models.ViewEvent{
			TemplateID: templateID,
			UserID:     userID,
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record view event: %w", err)
		}

		if err := tx.Model(&models.Template{}).Where("id = ?", templateID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment view counter: %w", err)
		}

		var updated models.Template
		if err := tx.Select("views").First(&updated, templateID).Error; err != nil {
			return fmt.Errorf("failed to read view counter: %w", err)
		}
		views = updated.Views

		return nil
	})

	if err != nil {
		return 0, err
	}

	return views, nil
}

// RecordClick appends a ClickEvent. The event is logged even when the
// referenced template or product does not exist: click rows are the audit
// trail and have to survive later deletions. The clicks counter only moves
// when the template id actually resolves.
func (s *TrackingService) RecordClick(templateID, productID *uint, platform string, userID *uint) error {
	if strings.TrimSpace(platform) == "" {
		return ErrPlatformRequired
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		event := &models.ClickEvent{
			TemplateID: templateID,
			ProductID:  productID,
			Platform:   platform,
			UserID:     userID,
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record click event: %w", err)
		}

		if templateID != nil {
			result := tx.Model(&models.Template{}).Where("id = ?", *templateID).
				UpdateColumn("clicks", gorm.Expr("clicks + 1"))
			if result.Error != nil {
				return fmt.Errorf("failed to increment click counter: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				logrus.WithField("template_id", *templateID).
					Debug("Click logged for unknown template, counter unchanged")
			}
		}

		return nil
	})
}

// CountViewEvents reports the event-log side of the counter invariant;
// a reconciliation job can compare it against Template.Views.
func (s *TrackingService) CountViewEvents(templateID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.ViewEvent{}).Where("template_id = ?", templateID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count view events: %w", err)
	}
	return count, nil
}

func (s *TrackingService) CountClickEvents(templateID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.ClickEvent{}).Where("template_id = ?", templateID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count click events: %w", err)
	}
	return count, nil
}
