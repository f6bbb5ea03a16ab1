// internal/handlers/feed.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskhub/deskhub-backend/internal/services"
	"github.com/deskhub/deskhub-backend/internal/utils"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GET /feed?limit=<int>&cursor=<int>&style=<string>
//
// The page shape is part of the public contract and is returned as-is,
// outside the APIResponse envelope:
//
//	{ "data": [...], "next_cursor": 42, "has_more": true }
func (h *FeedHandler) GetFeed(c *gin.Context) {
	limit := h.feedService.DefaultLimit()
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			utils.BadRequestResponse(c, "limit must be an integer", nil)
			return
		}
		limit = parsed
	}

	var cursor *uint
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		parsed, err := strconv.ParseUint(cursorStr, 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, "cursor must be a positive integer", nil)
			return
		}
		value := uint(parsed)
		cursor = &value
	}

	page, err := h.feedService.GetFeed(cursor, c.Query("style"), limit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLimit) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, "failed to load feed")
		return
	}

	c.JSON(http.StatusOK, page)
}
