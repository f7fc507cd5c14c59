package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/service"
	"github.com/sidarthus89/EVE-Trade/internal/utils"
)

// UniverseHandler handles region and station HTTP requests
type UniverseHandler struct {
	universeService *service.UniverseService
	logger          *zap.Logger
}

// NewUniverseHandler creates a new universe handler
func NewUniverseHandler(universeService *service.UniverseService, logger *zap.Logger) *UniverseHandler {
	return &UniverseHandler{
		universeService: universeService,
		logger:          logger,
	}
}

// GetRegions handles listing all tradeable regions
// GET /api/v1/regions
func (h *UniverseHandler) GetRegions(c *gin.Context) {
	regions, err := h.universeService.GetRegions(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get regions", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve regions")
		return
	}

	c.JSON(http.StatusOK, regions)
}

// GetStations handles listing the stations of one region
// GET /api/v1/stations/:regionId
func (h *UniverseHandler) GetStations(c *gin.Context) {
	regionID, err := strconv.ParseInt(c.Param("regionId"), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid region ID")
		return
	}

	stations, err := h.universeService.GetStations(c.Request.Context(), regionID)
	if err != nil {
		h.logger.Error("Failed to get stations",
			zap.Error(err),
			zap.Int64("region_id", regionID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve stations")
		return
	}

	c.JSON(http.StatusOK, stations)
}
