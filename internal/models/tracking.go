// internal/models/tracking.go
package models

// ViewEvent and ClickEvent are append-only audit rows. The denormalized
// counters on Template are authoritative for reads; these rows are the
// recovery source if the counters ever need to be recomputed.

type ViewEvent struct {
	BaseModel
	TemplateID uint  `json:"template_id" gorm:"not null;index"`
	UserID     *uint `json:"user_id,omitempty" gorm:"index"`
}

// ClickEvent deliberately has no foreign-key constraints: clicks may
// reference entities that never existed or were deleted later, and the
// audit trail has to survive that.
type ClickEvent struct {
	BaseModel
	TemplateID *uint  `json:"template_id,omitempty" gorm:"index"`
	ProductID  *uint  `json:"product_id,omitempty" gorm:"index"`
	Platform   string `json:"platform" gorm:"size:50;not null"`
	UserID     *uint  `json:"user_id,omitempty" gorm:"index"`
}
