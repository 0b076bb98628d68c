package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/models"
	"pulse-market/internal/services"
)

type MarketHandler struct {
	markets    *services.MarketService
	resolution *services.ResolutionService
}

func NewMarketHandler(markets *services.MarketService, resolution *services.ResolutionService) *MarketHandler {
	return &MarketHandler{markets: markets, resolution: resolution}
}

// GetMarkets returns active markets, optionally paginated
// GET /markets
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	limit := c.Query("limit")
	offset := c.DefaultQuery("offset", "0")

	var (
		markets []models.Market
		err     error
	)
	if limit != "" {
		limitN, _ := strconv.ParseUint(limit, 10, 64)
		offsetN, _ := strconv.ParseUint(offset, 10, 64)
		markets, err = h.markets.GetMarketsPaginated(c.Request.Context(), offsetN, limitN)
	} else {
		markets, err = h.markets.GetActiveMarkets(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch markets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"markets": markets,
		"count":   len(markets),
	})
}

// GetMarketByID returns a single market
// GET /markets/:id
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	market, err := h.markets.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch market"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"market":  market,
	})
}

// GetPendingResolution returns markets past their resolution time
// GET /markets/pending-resolution
func (h *MarketHandler) GetPendingResolution(c *gin.Context) {
	markets, err := h.markets.GetPendingResolutionMarkets(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending markets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"markets": markets,
	})
}

// PreviewPayout previews the odds and payout for a prospective bet
// POST /markets/:id/payout
func (h *MarketHandler) PreviewPayout(c *gin.Context) {
	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	var req struct {
		IsYes  bool   `json:"isYes"`
		Amount uint64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preview, err := h.markets.PreviewBet(c.Request.Context(), marketID, req.IsYes, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBetTooSmall),
			errors.Is(err, services.ErrBetTooLarge),
			errors.Is(err, services.ErrMarketSettled),
			errors.Is(err, services.ErrMarketExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate payout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payout":  preview,
	})
}

// ResolveWithOracle triggers oracle resolution for one market
// POST /markets/:id/resolve-oracle
func (h *MarketHandler) ResolveWithOracle(c *gin.Context) {
	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	market, err := h.markets.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch market"})
		return
	}
	if !market.HasOracle() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Market does not have oracle configuration",
		})
		return
	}

	alreadySettled, err := h.resolution.ResolveMarket(c.Request.Context(), *market)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"already_settled": alreadySettled,
	})
}
