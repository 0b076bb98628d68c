package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/services"
)

type ReferralHandler struct {
	referrals *services.ReferralService
}

func NewReferralHandler(referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// GetStats returns referral count and earnings for an address. A user who
// never registered for referrals just gets zeros, not an error.
// GET /referrals/:address
func (h *ReferralHandler) GetStats(c *gin.Context) {
	stats, err := h.referrals.Stats(c.Request.Context(), c.Param("address"))
	if err != nil {
		log.Printf("[ReferralHandler] stats lookup failed: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"referralCount": 0,
			"totalEarnings": 0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"referralCount": stats.ReferralCount,
		"totalEarnings": stats.TotalEarnings,
	})
}

// HasReferrer reports whether the address registered with a referral code
// GET /referrals/:address/has-referrer
func (h *ReferralHandler) HasReferrer(c *gin.Context) {
	hasReferrer, err := h.referrals.HasReferrer(c.Request.Context(), c.Param("address"))
	if err != nil {
		hasReferrer = false
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"hasReferrer": hasReferrer,
	})
}

// GetReferrer returns the referrer address, if any
// GET /referrals/:address/referrer
func (h *ReferralHandler) GetReferrer(c *gin.Context) {
	referrer, err := h.referrals.Referrer(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch referrer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"referrer": referrer,
	})
}
