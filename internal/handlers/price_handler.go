package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/oracle"
)

type PriceHandler struct {
	oracle *oracle.Client
}

func NewPriceHandler(oracleClient *oracle.Client) *PriceHandler {
	return &PriceHandler{oracle: oracleClient}
}

// GetFeeds lists the supported price feeds
// GET /prices/feeds
func (h *PriceHandler) GetFeeds(c *gin.Context) {
	feeds := make([]gin.H, 0, len(oracle.PriceFeeds))
	for symbol, feedID := range oracle.PriceFeeds {
		feeds = append(feeds, gin.H{
			"symbol": symbol,
			"feedId": feedID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"feeds":   feeds,
	})
}

// GetPrices returns current prices for every supported feed
// GET /prices
func (h *PriceHandler) GetPrices(c *gin.Context) {
	prices, err := h.oracle.GetLatestPrices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"prices":  prices,
	})
}

// GetPrice returns the current price for one symbol
// GET /prices/:symbol
func (h *PriceHandler) GetPrice(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	quote, err := h.oracle.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Price feed not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"price":   quote,
	})
}

// GetUpdateData returns fresh signed price payloads for contract calls.
// Never cached: the ledger rejects stale evidence.
// POST /prices/update-data
func (h *PriceHandler) GetUpdateData(c *gin.Context) {
	var req struct {
		FeedIDs []string `json:"feedIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.FeedIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedIds array required"})
		return
	}

	updateData, err := h.oracle.GetPriceUpdateData(c.Request.Context(), req.FeedIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch update data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"updateData": updateData,
	})
}
