package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/services"
)

type BonusHandler struct {
	bonus *services.BonusService
}

func NewBonusHandler(bonus *services.BonusService) *BonusHandler {
	return &BonusHandler{bonus: bonus}
}

// GetBonus returns a user's bonus balance and welcome-claim status
// GET /bonus/:address
func (h *BonusHandler) GetBonus(c *gin.Context) {
	address := c.Param("address")

	balance, err := h.bonus.BonusBalance(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bonus balance"})
		return
	}
	hasClaimed, err := h.bonus.HasClaimedWelcomeBonus(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bonus balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"balance":          balance,
		"hasClaimed":       hasClaimed,
		"balanceFormatted": formatOctas(balance),
	})
}

// GetWelcomeAmount returns the welcome bonus constant
// GET /bonus/welcome-amount
func (h *BonusHandler) GetWelcomeAmount(c *gin.Context) {
	amount := h.bonus.WelcomeBonusAmount(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"amount":          amount,
		"amountFormatted": formatOctas(amount),
	})
}

// GetStats returns global bonus issuance totals
// GET /bonus-stats
func (h *BonusHandler) GetStats(c *gin.Context) {
	stats, err := h.bonus.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bonus stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalIssued": stats.TotalIssued,
		"totalUsed":   stats.TotalUsed,
	})
}

// formatOctas renders an Octa amount as whole coins with two decimals.
func formatOctas(amount uint64) string {
	return fmt.Sprintf("%.2f", float64(amount)/1e8)
}
