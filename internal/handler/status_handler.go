package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/service"
	"github.com/sidarthus89/EVE-Trade/internal/utils"
)

// StatusHandler exposes the sync_status ledger
type StatusHandler struct {
	statusService *service.StatusService
	logger        *zap.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(statusService *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		logger:        logger,
	}
}

// GetSyncStatus handles listing every job family's last run outcome
// GET /api/v1/sync/status
func (h *StatusHandler) GetSyncStatus(c *gin.Context) {
	statuses, err := h.statusService.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get sync status", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve sync status")
		return
	}

	c.JSON(http.StatusOK, statuses)
}
