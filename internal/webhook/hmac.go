package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// verifyHMACSignature verifies an HMAC-SHA256 signature against the raw
// request body.
//
// This function uses constant-time comparison (crypto/subtle) to prevent
// timing attacks. The signature header carries an algorithm prefix
// ("sha256=<hex>", GitHub's X-Hub-Signature-256 format); the prefix must
// match the hash function in use.
//
// Returns nil if signature is valid, error otherwise.
// All errors are generic to prevent information leakage.
func verifyHMACSignature(body []byte, signature string, secret []byte) error {
	if len(secret) == 0 {
		return fmt.Errorf("webhook verification failed")
	}

	if signature == "" {
		return fmt.Errorf("webhook verification failed")
	}

	actualMAC, err := parseSignature(signature)
	if err != nil {
		// Generic error - don't leak format details
		return fmt.Errorf("webhook verification failed")
	}

	// Compute HMAC-SHA256 of request body
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expectedMAC := mac.Sum(nil)

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare(expectedMAC, actualMAC) != 1 {
		return fmt.Errorf("webhook verification failed")
	}

	return nil
}

// parseSignature splits "<algorithm>=<hex>" on the first '=' and decodes the
// digest. Only sha256 is supported; any other algorithm label is rejected.
func parseSignature(signature string) ([]byte, error) {
	algo, hexSig, found := strings.Cut(signature, "=")
	if !found {
		return nil, fmt.Errorf("missing algorithm prefix")
	}
	if algo != "sha256" {
		return nil, fmt.Errorf("unsupported algorithm %q", algo)
	}
	return hex.DecodeString(hexSig)
}

// computeExpectedSignature computes the HMAC-SHA256 signature for a body.
// Used for testing and validation. Returns hex-encoded signature.
func computeExpectedSignature(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// formatSignature formats a hex digest in GitHub's X-Hub-Signature-256 format.
func formatSignature(hexSig string) string {
	return "sha256=" + hexSig
}
