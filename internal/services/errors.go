// internal/services/errors.go
package services

import "errors"

// Sentinel errors handlers translate into HTTP status codes. Anything else
// coming out of a service is treated as a storage failure (500).
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrNotOwner         = errors.New("not the owner of this resource")

	ErrInvalidLimit     = errors.New("limit must be a positive integer")
	ErrPlatformRequired = errors.New("platform is required")
	ErrInvalidInput     = errors.New("invalid input")
)
