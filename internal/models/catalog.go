// internal/models/catalog.go
package models

import (
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	Name       string         `json:"name" gorm:"size:255;not null"`
	Brand      string         `json:"brand,omitempty" gorm:"size:100"`
	CategoryID uint           `json:"category_id" gorm:"not null;index"`
	Price      float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Currency   string         `json:"currency" gorm:"size:10;default:'CNY'"`
	ImageURL   string         `json:"image_url,omitempty" gorm:"size:500"`
	Specs      JSONB          `json:"specs" gorm:"type:jsonb"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`
	IsActive   bool           `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Category       Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	AffiliateLinks []AffiliateLink `json:"affiliate_links,omitempty" gorm:"foreignKey:ProductID"`
}

// SpecFloat reads a numeric entry from the specs map, e.g. "width" or "depth".
func (p *Product) SpecFloat(key string) (float64, bool) {
	if p.Specs == nil {
		return 0, false
	}
	return p.Specs.Float(key)
}

type AffiliateLink struct {
	BaseModel
	ProductID     uint    `json:"product_id" gorm:"not null;index"`
	Platform      string  `json:"platform" gorm:"size:50;not null"`
	URL           string  `json:"url" gorm:"size:1000;not null"`
	CommissionPct float64 `json:"commission_pct" gorm:"not null"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}
