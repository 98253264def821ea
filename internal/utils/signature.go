package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateSignature creates the hex HMAC-SHA256 of payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature validates an HMAC-SHA256 signature. An optional
// "sha256=" prefix is accepted.
func VerifySignature(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}
