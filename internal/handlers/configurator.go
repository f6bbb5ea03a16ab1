// internal/handlers/configurator.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhub/deskhub-backend/internal/i18n"
	"github.com/deskhub/deskhub-backend/internal/services"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

type ConfiguratorHandler struct {
	configuratorService *services.ConfiguratorService
}

func NewConfiguratorHandler(configuratorService *services.ConfiguratorService) *ConfiguratorHandler {
	return &ConfiguratorHandler{configuratorService: configuratorService}
}

// POST /configurator/recommendations
//
// Returns the recommendation as-is: { total_price, products,
// compatibility_issues, ai_message }. Constraint failures ride along in
// compatibility_issues; only malformed input gets a 400.
func (h *ConfiguratorHandler) GenerateRecommendations(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	recommendation, err := h.configuratorService.Recommend(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, "failed to generate recommendation")
		return
	}

	c.JSON(http.StatusOK, recommendation)
}
