// internal/handlers/template.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskhub/deskhub-backend/internal/i18n"
	"github.com/deskhub/deskhub-backend/internal/services"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

type TemplateHandler struct {
	templateService *services.TemplateService
	storageService  *services.StorageService
}

func NewTemplateHandler(templateService *services.TemplateService, storageService *services.StorageService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		storageService:  storageService,
	}
}

// GET /templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	templates, total, err := h.templateService.ListTemplates(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(templates, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /templates/:id — the read itself bumps the views counter.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid template ID", nil)
		return
	}

	template, err := h.templateService.GetTemplate(id)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			utils.NotFoundResponse(c, "template")
			return
		}
		utils.InternalErrorResponse(c, "failed to load template")
		return
	}

	c.JSON(http.StatusOK, template)
}

// POST /templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	template, err := h.templateService.CreateTemplate(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyTemplateCreated),
		"template": template,
	})
}

// PUT /templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid template ID", nil)
		return
	}

	var req services.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	template, err := h.templateService.UpdateTemplate(id, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			utils.NotFoundResponse(c, "template")
		case errors.Is(err, services.ErrNotOwner):
			utils.ForbiddenResponse(c, "")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyTemplateUpdated),
		"template": template,
	})
}

// DELETE /templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid template ID", nil)
		return
	}

	if err := h.templateService.DeleteTemplate(id, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			utils.NotFoundResponse(c, "template")
		case errors.Is(err, services.ErrNotOwner):
			utils.ForbiddenResponse(c, "")
		default:
			utils.InternalErrorResponse(c, "failed to delete template")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTemplateDeleted),
	})
}

// POST /templates/upload-cover
func (h *TemplateHandler) UploadCoverImage(c *gin.Context) {
	if _, exists := utils.GetUserIDFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("covers")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cover_image_url": result.URL,
		"key":             result.Key,
		"size":            result.Size,
	})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
