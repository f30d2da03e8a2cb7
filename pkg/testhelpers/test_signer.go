package testhelpers

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/google/uuid"

	"github.com/floroz/ride-auction/pkg/auth"
)

const TestIssuer = "ride-auction-test"

// TestSigner signs tokens for test callers
type TestSigner struct {
	Signer       *auth.Signer
	PublicKeyPEM []byte
}

// NewTestSigner generates a throwaway RSA key pair
func NewTestSigner(t *testing.T) *TestSigner {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	signer, err := auth.NewSigner(privPEM, pubPEM, TestIssuer)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	return &TestSigner{Signer: signer, PublicKeyPEM: pubPEM}
}

// BearerToken returns an Authorization header value for the user
func (s *TestSigner) BearerToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := s.Signer.GenerateToken(userID, "", auth.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}
