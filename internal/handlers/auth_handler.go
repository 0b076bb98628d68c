package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-market/internal/services"
)

// AuthHandler handles wallet-signature authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Challenge issues a single-use login message for the wallet to sign
// POST /auth/challenge
func (h *AuthHandler) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.authService.Challenge(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// Verify checks the wallet's signature over the challenge and returns a JWT
// POST /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		PublicKey string `json:"public_key" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Verify(c.Request.Context(), req.Address, req.PublicKey, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "challenge expired, request a new one"})
		case errors.Is(err, services.ErrInvalidSignature),
			errors.Is(err, services.ErrAddressKeyMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
	})
}
