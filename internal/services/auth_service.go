package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulse-market/internal/auth"
	"pulse-market/internal/models"
)

const (
	nonceBytes = 32
	nonceTTL   = 5 * time.Minute
)

var (
	ErrChallengeExpired   = errors.New("login challenge expired or not issued")
	ErrInvalidSignature   = errors.New("signature verification failed")
	ErrAddressKeyMismatch = errors.New("public key does not match address")
)

// AuthService issues single-use login challenges and verifies wallet
// signatures over them. Each challenge carries a random nonce so a captured
// signature cannot be replayed.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Challenge creates a fresh nonce for the address and returns the message
// the wallet must sign. Re-requesting replaces the previous nonce.
func (s *AuthService) Challenge(ctx context.Context, address string) (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := base58.Encode(buf)

	record := models.AuthNonce{
		Address:   strings.ToLower(address),
		Nonce:     nonce,
		ExpiresAt: time.Now().Add(nonceTTL),
		CreatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"nonce", "expires_at", "created_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	return LoginMessage(nonce), nil
}

// LoginMessage is the exact text the wallet signs for a given nonce.
func LoginMessage(nonce string) string {
	return "Sign this message to authenticate with Pulse\nNonce: " + nonce
}

// Verify checks the signature over the issued challenge and returns a JWT
// on success. The public key must derive the claimed address; signature and
// key are hex-encoded.
func (s *AuthService) Verify(ctx context.Context, address, publicKeyHex, signatureHex string) (string, error) {
	address = strings.ToLower(address)

	var record models.AuthNonce
	err := s.db.WithContext(ctx).First(&record, "address = ?", address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrChallengeExpired
		}
		return "", err
	}
	if time.Now().After(record.ExpiresAt) {
		return "", ErrChallengeExpired
	}

	pubKey, err := hex.DecodeString(strings.TrimPrefix(publicKeyHex, "0x"))
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return "", fmt.Errorf("invalid public key format")
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return "", fmt.Errorf("invalid signature format")
	}

	if DeriveAddress(pubKey) != address {
		return "", ErrAddressKeyMismatch
	}

	message := []byte(LoginMessage(record.Nonce))
	if !ed25519.Verify(pubKey, message, sig) {
		return "", ErrInvalidSignature
	}

	// Single use: burn the nonce before issuing the token.
	if err := s.db.WithContext(ctx).Delete(&models.AuthNonce{}, "address = ?", address).Error; err != nil {
		return "", fmt.Errorf("failed to consume nonce: %w", err)
	}

	token, err := auth.GenerateToken(address)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// DeriveAddress computes the account address for a single ed25519 key:
// sha3-256(pubkey || 0x00), hex with 0x prefix.
func DeriveAddress(pubKey []byte) string {
	h := sha3.New256()
	h.Write(pubKey)
	h.Write([]byte{0x00})
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
