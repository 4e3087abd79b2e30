package webhook

import (
	"strings"
	"testing"
)

func TestVerifyHMACSignature_Valid(t *testing.T) {
	secret := []byte("test-secret")
	body := []byte(`{"zen":"Design for failure."}`)
	signature := formatSignature(computeExpectedSignature(body, secret))

	if err := verifyHMACSignature(body, signature, secret); err != nil {
		t.Errorf("verifyHMACSignature() = %v, want nil", err)
	}
}

func TestVerifyHMACSignature_WrongSecret(t *testing.T) {
	body := []byte(`{"zen":"Design for failure."}`)
	signature := formatSignature(computeExpectedSignature(body, []byte("other-secret")))

	if err := verifyHMACSignature(body, signature, []byte("test-secret")); err == nil {
		t.Error("verifyHMACSignature() = nil, want error for wrong secret")
	}
}

func TestVerifyHMACSignature_TamperedBody(t *testing.T) {
	secret := []byte("test-secret")
	body := []byte(`{"action":"opened"}`)
	signature := formatSignature(computeExpectedSignature(body, secret))

	tampered := []byte(`{"action":"Opened"}`)
	if err := verifyHMACSignature(tampered, signature, secret); err == nil {
		t.Error("verifyHMACSignature() = nil, want error for tampered body")
	}
}

func TestVerifyHMACSignature_MissingSignature(t *testing.T) {
	if err := verifyHMACSignature([]byte(`{}`), "", []byte("secret")); err == nil {
		t.Error("verifyHMACSignature() = nil, want error for empty signature")
	}
}

func TestVerifyHMACSignature_EmptySecret(t *testing.T) {
	body := []byte(`{}`)
	signature := formatSignature(computeExpectedSignature(body, []byte("")))

	if err := verifyHMACSignature(body, signature, nil); err == nil {
		t.Error("verifyHMACSignature() = nil, want error for empty secret")
	}
}

func TestVerifyHMACSignature_ErrorsAreGeneric(t *testing.T) {
	cases := map[string]string{
		"no prefix":       "deadbeef",
		"sha1 prefix":     "sha1=deadbeef",
		"bad hex":         "sha256=not-hex",
		"wrong signature": "sha256=" + strings.Repeat("0", 64),
	}

	for name, signature := range cases {
		err := verifyHMACSignature([]byte(`{}`), signature, []byte("secret"))
		if err == nil {
			t.Errorf("%s: verifyHMACSignature() = nil, want error", name)
			continue
		}
		// Failure reasons must not leak to callers.
		if err.Error() != "webhook verification failed" {
			t.Errorf("%s: error = %q, want generic message", name, err)
		}
	}
}

func TestParseSignature(t *testing.T) {
	digest, err := parseSignature("sha256=deadbeef")
	if err != nil {
		t.Fatalf("parseSignature() error = %v", err)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if string(digest) != string(want) {
		t.Errorf("digest = %x, want %x", digest, want)
	}

	if _, err := parseSignature("md5=deadbeef"); err == nil {
		t.Error("parseSignature() accepted md5 prefix")
	}
	if _, err := parseSignature("deadbeef"); err == nil {
		t.Error("parseSignature() accepted bare digest")
	}
}
