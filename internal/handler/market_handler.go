package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/service"
	"github.com/sidarthus89/EVE-Trade/internal/utils"
)

// MarketHandler handles market data HTTP requests
type MarketHandler struct {
	marketService *service.MarketService
	logger        *zap.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketService *service.MarketService, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
		logger:        logger,
	}
}

// GetOrderBook handles retrieving live orders for one item in one region
// GET /api/v1/market/:typeId/:regionId?outlierFilter=iqr_1.5
func (h *MarketHandler) GetOrderBook(c *gin.Context) {
	typeID, err := strconv.ParseInt(c.Param("typeId"), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid type ID")
		return
	}

	regionID, err := strconv.ParseInt(c.Param("regionId"), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid region ID")
		return
	}

	book, err := h.marketService.GetOrderBook(c.Request.Context(), typeID, regionID, c.Query("outlierFilter"))
	if err != nil {
		h.logger.Error("Failed to get order book",
			zap.Error(err),
			zap.Int64("type_id", typeID),
			zap.Int64("region_id", regionID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve market orders")
		return
	}

	c.JSON(http.StatusOK, book)
}

// GetItemType handles retrieving one item type
// GET /api/v1/items/:typeId
func (h *MarketHandler) GetItemType(c *gin.Context) {
	typeID, err := strconv.ParseInt(c.Param("typeId"), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid type ID")
		return
	}

	item, err := h.marketService.GetItemType(c.Request.Context(), typeID)
	if err != nil {
		h.logger.Error("Failed to get item type",
			zap.Error(err),
			zap.Int64("type_id", typeID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve item type")
		return
	}
	if item == nil {
		utils.SendErrorResponse(c, http.StatusNotFound, "Item type not found")
		return
	}

	c.JSON(http.StatusOK, item)
}

// SearchItems handles searching published items by name fragment
// GET /api/v1/items/search/:query
func (h *MarketHandler) SearchItems(c *gin.Context) {
	query := c.Param("query")

	result, err := h.marketService.SearchItemTypes(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("Failed to search item types",
			zap.Error(err),
			zap.String("query", query))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to search items")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMarketTree serves the denormalized market tree snapshot
// GET /api/v1/items/tree
func (h *MarketHandler) GetMarketTree(c *gin.Context) {
	data, err := h.marketService.MarketTreeSnapshot()
	if err != nil {
		h.logger.Warn("Market tree snapshot unavailable", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Market tree not yet built")
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}
