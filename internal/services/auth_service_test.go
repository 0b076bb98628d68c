package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"pulse-market/internal/auth"
)

func TestChallengeVerifyRoundTrip(t *testing.T) {
	auth.InitJWT("test-secret")
	svc := NewAuthService(testDB(t))
	ctx := context.Background()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	address := DeriveAddress(pub)

	message, err := svc.Challenge(ctx, address)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	if !strings.Contains(message, "Nonce: ") {
		t.Fatalf("challenge message missing nonce: %q", message)
	}

	sig := ed25519.Sign(priv, []byte(message))
	token, err := svc.Verify(ctx, address, hex.EncodeToString(pub), hex.EncodeToString(sig))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if token == "" {
		t.Fatal("expected a JWT")
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.WalletAddress != address {
		t.Errorf("token address = %s, want %s", claims.WalletAddress, address)
	}

	// The nonce is single use: replaying the same signature must fail.
	if _, err := svc.Verify(ctx, address, hex.EncodeToString(pub), hex.EncodeToString(sig)); !errors.Is(err, ErrChallengeExpired) {
		t.Errorf("replay: got %v, want ErrChallengeExpired", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	auth.InitJWT("test-secret")
	svc := NewAuthService(testDB(t))
	ctx := context.Background()

	pub, _, _ := ed25519.GenerateKey(rand.Reader)
	otherPub, otherPriv, _ := ed25519.GenerateKey(rand.Reader)
	address := DeriveAddress(pub)

	message, err := svc.Challenge(ctx, address)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}

	// Signature is valid, but for a key that does not derive the address.
	sig := ed25519.Sign(otherPriv, []byte(message))
	_, err = svc.Verify(ctx, address, hex.EncodeToString(otherPub), hex.EncodeToString(sig))
	if !errors.Is(err, ErrAddressKeyMismatch) {
		t.Errorf("got %v, want ErrAddressKeyMismatch", err)
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	auth.InitJWT("test-secret")
	svc := NewAuthService(testDB(t))
	ctx := context.Background()

	pub, _, _ := ed25519.GenerateKey(rand.Reader)
	address := DeriveAddress(pub)

	if _, err := svc.Challenge(ctx, address); err != nil {
		t.Fatalf("Challenge: %v", err)
	}

	badSig := make([]byte, ed25519.SignatureSize)
	_, err := svc.Verify(ctx, address, hex.EncodeToString(pub), hex.EncodeToString(badSig))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("got %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyWithoutChallenge(t *testing.T) {
	auth.InitJWT("test-secret")
	svc := NewAuthService(testDB(t))

	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	address := DeriveAddress(pub)
	sig := ed25519.Sign(priv, []byte(LoginMessage("never-issued")))

	_, err := svc.Verify(context.Background(), address, hex.EncodeToString(pub), hex.EncodeToString(sig))
	if !errors.Is(err, ErrChallengeExpired) {
		t.Errorf("got %v, want ErrChallengeExpired", err)
	}
}
