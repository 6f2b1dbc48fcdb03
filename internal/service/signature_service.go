package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// callbackSeedLen is the number of random bytes behind a callback token.
const callbackSeedLen = 64

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
type HMACSignatureService struct {
	random io.Reader
}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{random: rand.Reader}
}

// Sign computes HMAC-SHA256 of payload keyed by secretKey as lowercase hex.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// CallbackToken derives a fresh IPN auth token for the shop at siteURL:
// hex(random seed) signed with the site URL as key. The token is appended to
// the callback URL registered with KEKS Pay and stored sealed in settings.
func (s *HMACSignatureService) CallbackToken(siteURL string) (string, error) {
	seed := make([]byte, callbackSeedLen)
	if _, err := io.ReadFull(s.random, seed); err != nil {
		return "", fmt.Errorf("reading callback token seed: %w", err)
	}
	return s.Sign(siteURL, hex.EncodeToString(seed)), nil
}
