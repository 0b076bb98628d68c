package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/chain"
	"pulse-market/internal/models"
	"pulse-market/internal/services"
)

// SenderFactory builds a transaction sender for a wallet address. Signing
// stays in the external signer service; the factory just binds an address
// to it.
type SenderFactory func(address string) chain.TxnSender

type PositionHandler struct {
	positions   *services.PositionService
	claims      *services.ClaimService
	leaderboard *services.LeaderboardService
	newSender   SenderFactory
}

func NewPositionHandler(
	positions *services.PositionService,
	claims *services.ClaimService,
	leaderboard *services.LeaderboardService,
	newSender SenderFactory,
) *PositionHandler {
	return &PositionHandler{
		positions:   positions,
		claims:      claims,
		leaderboard: leaderboard,
		newSender:   newSender,
	}
}

// GetPositions returns all positions for an address
// GET /positions/:address
func (h *PositionHandler) GetPositions(c *gin.Context) {
	positions, err := h.positions.GetUserPositions(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch positions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"positions": positions,
	})
}

// GetActivePositions returns positions on unsettled markets
// GET /positions/:address/active
func (h *PositionHandler) GetActivePositions(c *gin.Context) {
	book, err := h.positions.GetUserBook(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active positions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"positions": book.Active,
	})
}

// GetClaimablePositions returns won, unclaimed positions plus the total
// they would pay out
// GET /positions/:address/claimable
func (h *PositionHandler) GetClaimablePositions(c *gin.Context) {
	book, err := h.positions.GetUserBook(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claimable positions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"positions": book.Claimable,
		"total":     h.positions.ClaimableAmount(book.Claimable),
	})
}

// ClaimAll claims every claimable position for the address, in order
// POST /positions/:address/claim-all
func (h *PositionHandler) ClaimAll(c *gin.Context) {
	address := c.Param("address")

	book, err := h.positions.GetUserBook(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claimable positions"})
		return
	}

	sender := h.newSender(address)
	result := h.claims.ClaimAll(c.Request.Context(), sender, book.Claimable, func(p models.ClaimProgress) {
		log.Printf("[PositionHandler] claim progress for %s: %d/%d", address, p.Current, p.Total)
	})

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"claimed":   result.SuccessCount,
		"attempted": result.AttemptedCount,
		"celebrate": result.Celebrate(),
	})
}

// GetStats returns aggregate betting stats for an address
// GET /stats/:address
func (h *PositionHandler) GetStats(c *gin.Context) {
	address := c.Param("address")

	stats, err := h.positions.GetUserStats(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user stats"})
		return
	}

	// Anyone asking for stats has interacted; feed the leaderboard.
	if err := h.leaderboard.AddKnownUser(c.Request.Context(), address); err != nil {
		log.Printf("[PositionHandler] failed to record known user %s: %v", address, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
