package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codelenshq/codelens/internal/middleware"
	"github.com/codelenshq/codelens/internal/services"
)

type QuotaHandler struct {
	quotaService *services.QuotaService
}

func NewQuotaHandler(quotaService *services.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService}
}

// Status returns the authenticated user's usage for today
func (h *QuotaHandler) Status(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	status, err := h.quotaService.Status(userID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quota": status})
}
