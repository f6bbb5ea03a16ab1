// internal/services/configurator_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/config"
	"github.com/deskhub/deskhub-backend/internal/models"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

// ConfiguratorService assembles a desk/chair/monitor bundle under a space
// and budget constraint. It always answers: missing candidates and budget
// overruns are reported as advisory issues on a partial bundle, never as
// errors. Roles map to categories by name, taken from configuration.
type ConfiguratorService struct {
	db             *gorm.DB
	productService *ProductService
	cfg            config.ConfiguratorConfig
	strategy       SelectionStrategy
}

type RecommendationRequest struct {
	SpaceWidth float64 `json:"space_width" validate:"required,gt=0"`
	SpaceDepth float64 `json:"space_depth" validate:"required,gt=0"`
	Budget     float64 `json:"budget" validate:"required,gt=0"`
	Style      string  `json:"style" validate:"required"`
	Purpose    string  `json:"purpose" validate:"required"`
}

type Recommendation struct {
	TotalPrice          float64          `json:"total_price"`
	Products            []models.Product `json:"products"`
	CompatibilityIssues []string         `json:"compatibility_issues"`
	AIMessage           string           `json:"ai_message"`
}

func NewConfiguratorService(db *gorm.DB, productService *ProductService, cfg config.ConfiguratorConfig, strategy SelectionStrategy) *ConfiguratorService {
	if strategy == nil {
		strategy = CheapestStrategy{}
	}
	return &ConfiguratorService{
		db:             db,
		productService: productService,
		cfg:            cfg,
		strategy:       strategy,
	}
}

// Recommend fills the desk, chair and monitor roles in that order. Only
// malformed input is rejected; every constraint failure downgrades to an
// issue on the returned bundle.
func (s *ConfiguratorService) Recommend(req *RecommendationRequest) (*Recommendation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rec := &Recommendation{
		Products:            []models.Product{},
		CompatibilityIssues: []string{},
	}

	// Desk: the only role with a spatial constraint. A product without a
	// width spec is treated as unconstrained.
	desks, err := s.roleCandidates(s.cfg.DeskCategory)
	if err != nil {
		return nil, err
	}

	var deskCandidates []models.Product
	for _, d := range desks {
		if width, ok := d.SpecFloat("width"); ok && width > req.SpaceWidth {
			continue
		}
		deskCandidates = append(deskCandidates, d)
	}

	if desk := s.strategy.Select(deskCandidates); desk != nil {
		rec.Products = append(rec.Products, *desk)
		rec.TotalPrice += desk.Price
	} else {
		rec.CompatibilityIssues = append(rec.CompatibilityIssues,
			fmt.Sprintf("No desk found with a width of at most %gcm", req.SpaceWidth))
	}

	// Chair and monitor: picked whenever the category has active products.
	for _, role := range []string{s.cfg.ChairCategory, s.cfg.MonitorCategory} {
		candidates, err := s.roleCandidates(role)
		if err != nil {
			return nil, err
		}
		if picked := s.strategy.Select(candidates); picked != nil {
			rec.Products = append(rec.Products, *picked)
			rec.TotalPrice += picked.Price
		}
	}

	// Budget is advisory: the bundle is returned either way.
	if rec.TotalPrice > req.Budget {
		overage := rec.TotalPrice - req.Budget
		rec.CompatibilityIssues = append(rec.CompatibilityIssues,
			fmt.Sprintf("The bundle totals %.2f, which exceeds your budget of %.2f by %.2f", rec.TotalPrice, req.Budget, overage))
	}

	rec.AIMessage = fmt.Sprintf("Based on your %s style preference, we put together a %s setup totaling %.2f.",
		req.Style, req.Purpose, rec.TotalPrice)

	return rec, nil
}

// roleCandidates resolves a role's category by name and returns its active
// products. A category that does not exist yet yields no candidates rather
// than an error, so a half-seeded catalog degrades to issues.
func (s *ConfiguratorService) roleCandidates(categoryName string) ([]models.Product, error) {
	products, err := s.productService.ActiveProductsByCategoryName(categoryName)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return products, nil
}
