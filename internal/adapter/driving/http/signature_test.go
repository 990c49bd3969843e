package httphandler_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	httphandler "github.com/mudit06mah/guardian/internal/adapter/driving/http"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	body := []byte(`{"action":"completed"}`)

	assert.True(t, httphandler.VerifySignature(body, sign(body, "s3cret"), "s3cret"))
	assert.True(t, httphandler.VerifySignature(nil, sign(nil, "s3cret"), "s3cret"))
}

func TestVerifySignature_BitFlips(t *testing.T) {
	body := []byte(`{"action":"completed"}`)
	header := sign(body, "s3cret")

	for i := range body {
		flipped := append([]byte(nil), body...)
		flipped[i] ^= 0x01
		assert.False(t, httphandler.VerifySignature(flipped, header, "s3cret"), "body byte %d", i)
	}

	digest := []byte(header)
	for i := len("sha256="); i < len(digest); i++ {
		tampered := append([]byte(nil), digest...)
		if tampered[i] == '0' {
			tampered[i] = '1'
		} else {
			tampered[i] = '0'
		}
		assert.False(t, httphandler.VerifySignature(body, string(tampered), "s3cret"), "digest char %d", i)
	}
}

func TestVerifySignature_FailsClosed(t *testing.T) {
	body := []byte("payload")
	good := sign(body, "s3cret")

	tests := []struct {
		name   string
		header string
		secret string
	}{
		{name: "wrong secret", header: good, secret: "other"},
		{name: "empty secret", header: sign(body, ""), secret: ""},
		{name: "missing prefix", header: good[len("sha256="):], secret: "s3cret"},
		{name: "sha1 prefix", header: "sha1=" + good[len("sha256="):], secret: "s3cret"},
		{name: "non-hex digest", header: "sha256=zz", secret: "s3cret"},
		{name: "truncated digest", header: good[:len(good)-2], secret: "s3cret"},
		{name: "empty header", header: "", secret: "s3cret"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, httphandler.VerifySignature(body, tc.header, tc.secret))
		})
	}
}
