// internal/handlers/tracking.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhub/deskhub-backend/internal/i18n"
	"github.com/deskhub/deskhub-backend/internal/services"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

type TrackingHandler struct {
	trackingService *services.TrackingService
}

type TrackViewRequest struct {
	TemplateID uint `json:"template_id" binding:"required"`
}

type TrackClickRequest struct {
	TemplateID *uint  `json:"template_id,omitempty"`
	ProductID  *uint  `json:"product_id,omitempty"`
	Platform   string `json:"platform" binding:"required"`
}

func NewTrackingHandler(trackingService *services.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// POST /track/view → { "status": "ok", "views": <int> }; 404 when the
// template does not exist.
func (h *TrackingHandler) TrackView(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req TrackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	views, err := h.trackingService.RecordView(req.TemplateID, currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			utils.NotFoundResponse(c, "template")
			return
		}
		utils.InternalErrorResponse(c, "failed to record view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"views":  views,
	})
}

// POST /track/click → { "status": "ok" }. Never 404s: dangling template
// and product ids are logged for audit, they just don't move a counter.
func (h *TrackingHandler) TrackClick(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	err := h.trackingService.RecordClick(req.TemplateID, req.ProductID, req.Platform, currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrPlatformRequired) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, "failed to record click")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUserID resolves the optional authenticated user for event
// attribution.
func currentUserID(c *gin.Context) *uint {
	if id, ok := utils.GetUserIDFromContext(c); ok {
		return &id
	}
	return nil
}
