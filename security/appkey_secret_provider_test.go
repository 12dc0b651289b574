package security

import (
	"bytes"
	"context"
	"testing"
)

func TestAppKeySecretProvider_EncryptDecryptRoundTrip(t *testing.T) {
	provider, err := NewAppKeySecretProviderFromString("super-secret-test-key", WithKeyID("webhook-v1"), WithVersion(3))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	plaintext := []byte("hmac-shared-secret")
	encrypted, err := provider.Encrypt(context.Background(), plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(encrypted, plaintext) {
		t.Fatalf("expected encrypted payload to differ from plaintext")
	}
	if !bytes.HasPrefix(encrypted, []byte(envelopePrefix)) {
		t.Fatalf("expected envelope prefix")
	}

	decrypted, err := provider.Decrypt(context.Background(), encrypted)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("expected roundtrip plaintext; got %q", string(decrypted))
	}

	meta, err := ParseEnvelopeMetadata(encrypted)
	if err != nil {
		t.Fatalf("parse metadata: %v", err)
	}
	if meta.KeyID != "webhook-v1" || meta.Version != 3 || meta.Algorithm != envelopeAlgorithm {
		t.Fatalf("unexpected envelope metadata %#v", meta)
	}
}

func TestAppKeySecretProvider_RejectsMetadataMismatch(t *testing.T) {
	issuer, err := NewAppKeySecretProviderFromString("super-secret-test-key", WithKeyID("webhook-v1"), WithVersion(1))
	if err != nil {
		t.Fatalf("new issuer provider: %v", err)
	}
	receiver, err := NewAppKeySecretProviderFromString("super-secret-test-key", WithKeyID("webhook-v2"), WithVersion(2))
	if err != nil {
		t.Fatalf("new receiver provider: %v", err)
	}

	encrypted, err := issuer.Encrypt(context.Background(), []byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := receiver.Decrypt(context.Background(), encrypted); err == nil {
		t.Fatalf("expected metadata mismatch error")
	}
}

func TestAppKeySecretProvider_ResolveSecret(t *testing.T) {
	provider, err := NewAppKeySecretProviderFromString("app-key-material")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	ctx := context.Background()

	plain, err := provider.ResolveSecret(ctx, "not-encrypted")
	if err != nil || plain != "not-encrypted" {
		t.Fatalf("expected plain secret passthrough, got %q err=%v", plain, err)
	}

	stored, err := provider.EncryptSecret(ctx, "s3cret")
	if err != nil {
		t.Fatalf("encrypt secret: %v", err)
	}
	if !IsEnvelope(stored) {
		t.Fatalf("expected stored secret to be enveloped")
	}
	resolved, err := provider.ResolveSecret(ctx, stored)
	if err != nil {
		t.Fatalf("resolve secret: %v", err)
	}
	if resolved != "s3cret" {
		t.Fatalf("expected s3cret, got %q", resolved)
	}
}

func TestAppKeySecretProvider_ResolveSecretWrongKey(t *testing.T) {
	issuer, _ := NewAppKeySecretProviderFromString("key-one")
	other, _ := NewAppKeySecretProviderFromString("key-two")

	stored, err := issuer.EncryptSecret(context.Background(), "s3cret")
	if err != nil {
		t.Fatalf("encrypt secret: %v", err)
	}
	if _, err := other.ResolveSecret(context.Background(), stored); err == nil {
		t.Fatalf("expected decrypt failure with a different key")
	}
}

func TestDecodeEnvelope_RejectsMalformedInput(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(`{"ciphertext":"abc"}`),
		[]byte(envelopePrefix + `not-json`),
		[]byte(envelopePrefix + `{"alg":"rot13","ciphertext":"abc"}`),
		[]byte(envelopePrefix + `{"alg":"aes-256-gcm"}`),
	}
	for _, input := range cases {
		if _, err := decodeEnvelope(input); err == nil {
			t.Fatalf("expected error for %q", string(input))
		}
	}
}

func TestNewAppKeySecretProvider_RequiresKey(t *testing.T) {
	if _, err := NewAppKeySecretProvider([]byte("  ")); err == nil {
		t.Fatalf("expected error for blank key material")
	}
}
