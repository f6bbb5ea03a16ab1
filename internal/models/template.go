// internal/models/template.go
package models

type Template struct {
	BaseModel
	CreatorID     uint   `json:"creator_id" gorm:"not null;index"`
	Title         string `json:"title" gorm:"size:255;not null"`
	Description   string `json:"description,omitempty" gorm:"type:text"`
	Style         string `json:"style,omitempty" gorm:"size:100;index"`
	CoverImageURL string `json:"cover_image_url,omitempty" gorm:"size:500"`
	Views         int64  `json:"views" gorm:"default:0"`
	Clicks        int64  `json:"clicks" gorm:"default:0"`

	// Relationships
	Creator User           `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Items   []TemplateItem `json:"items,omitempty" gorm:"foreignKey:TemplateID"`
}

// TemplateItem places a product on a template canvas. Insertion order is
// kept stable for display but carries no feed semantics.
type TemplateItem struct {
	BaseModel
	TemplateID uint    `json:"template_id" gorm:"not null;index"`
	ProductID  uint    `json:"product_id" gorm:"not null;index"`
	PositionX  float64 `json:"position_x" gorm:"default:0"`
	PositionY  float64 `json:"position_y" gorm:"default:0"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
