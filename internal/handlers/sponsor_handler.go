package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/chain"
)

type SponsorHandler struct {
	station *chain.GasStation
}

func NewSponsorHandler(station *chain.GasStation) *SponsorHandler {
	return &SponsorHandler{station: station}
}

// Sponsor asks the gas station to co-sign a transaction. Failure is never a
// blocked action: the client gets sponsored=false and submits the
// transaction paying its own gas.
// POST /sponsor
func (h *SponsorHandler) Sponsor(c *gin.Context) {
	var req struct {
		Sender      string `json:"sender" binding:"required"`
		Function    string `json:"function" binding:"required"`
		Transaction string `json:"transaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.station.ShouldSponsor(req.Function) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"sponsored": false,
		})
		return
	}

	sponsorship, err := h.station.Sponsor(c.Request.Context(), req.Sender, req.Transaction)
	if err != nil {
		log.Printf("[SponsorHandler] sponsorship failed, falling back to self-paid gas: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"sponsored": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"sponsored":   true,
		"sponsorship": sponsorship,
	})
}

// Status returns the gas station state for ops checks
// GET /sponsor/status
func (h *SponsorHandler) Status(c *gin.Context) {
	if !h.station.Enabled() {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"enabled": false,
		})
		return
	}

	fund, err := h.station.Fund(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gas fund"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"enabled": true,
		"fund":    fund,
	})
}
