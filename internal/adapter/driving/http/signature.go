package httphandler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	signatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// VerifySignature reports whether header is "sha256=" followed by the hex
// HMAC-SHA256 of body keyed with secret. It fails closed: an empty secret,
// a missing prefix or a digest that is not hex never verifies.
func VerifySignature(body []byte, header, secret string) bool {
	if secret == "" {
		return false
	}

	digest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
