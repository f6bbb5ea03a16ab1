// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Templates
	KeyTemplateCreated  = "template.created"
	KeyTemplateUpdated  = "template.updated"
	KeyTemplateDeleted  = "template.deleted"
	KeyTemplateNotFound = "template.not_found"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductNotFound = "product.not_found"

	// Categories
	KeyCategoryCreated = "category.created"
	KeyCategoryExists  = "category.exists"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
