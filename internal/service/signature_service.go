package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureService signs webhook payloads with HMAC-SHA256.
type SignatureService struct{}

func NewSignatureService() *SignatureService {
	return &SignatureService{}
}

// Sign returns the lowercase hex HMAC-SHA256 of payload under secret.
func (s *SignatureService) Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares in constant time.
func (s *SignatureService) Verify(payload []byte, signature, secret string) bool {
	expected := s.Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
