package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	HeaderContentType = "Content-Type"
	HeaderSignature   = "X-Webhook-Signature"

	ContentTypeJSON = "application/json"
)

// Signer computes the value of the signature header for a serialized body.
type Signer interface {
	Sign(secret string, body []byte) string
}

// HMACSigner produces a lowercase hex HMAC-SHA256 digest. An empty secret
// yields an empty signature.
type HMACSigner struct{}

func (HMACSigner) Sign(secret string, body []byte) string {
	if secret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature header against the body, for
// endpoints that consume these webhooks.
func VerifySignature(secret string, body []byte, signature string) error {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" {
		return fmt.Errorf("core: %s header is required", HeaderSignature)
	}
	if secret == "" {
		return fmt.Errorf("core: secret is required to verify %s", HeaderSignature)
	}
	expected := HMACSigner{}.Sign(secret, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return fmt.Errorf("core: %s mismatch", HeaderSignature)
	}
	return nil
}

// MarshalPayload serializes a payload canonically: object keys are emitted in
// sorted order so the same payload always yields the same bytes.
func MarshalPayload(payload Payload) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("core: payload is required")
	}
	body, err := json.Marshal(map[string]any(payload))
	if err != nil {
		return nil, fmt.Errorf("core: encode payload: %w", err)
	}
	return body, nil
}

// SignPayload serializes the payload and signs the exact bytes that will be
// sent.
func SignPayload(signer Signer, secret string, payload Payload) ([]byte, string, error) {
	if signer == nil {
		signer = HMACSigner{}
	}
	body, err := MarshalPayload(payload)
	if err != nil {
		return nil, "", err
	}
	return body, signer.Sign(secret, body), nil
}
