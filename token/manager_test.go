package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"
)

func newEdManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	m, err := NewManager(Config{
		TTL:           ttl,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "sessionkit-test",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestLinkRoundTrip(t *testing.T) {
	m := newEdManager(t, time.Minute)

	signed, err := m.CreateLink("admin@conectaworking.dev", "challenge-token")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	claims, err := m.ParseLink(signed)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if claims.Email != "admin@conectaworking.dev" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.Challenge != "challenge-token" {
		t.Fatalf("challenge = %q", claims.Challenge)
	}
}

func TestLinkHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	signed, err := m.CreateLink("user@example.com", "chl")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	claims, err := m.ParseLink(signed)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
}

func TestLinkTamperRejected(t *testing.T) {
	m := newEdManager(t, time.Minute)

	signed, err := m.CreateLink("user@example.com", "chl")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := m.ParseLink(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestLinkWrongKeyRejected(t *testing.T) {
	signer := newEdManager(t, time.Minute)
	verifier := newEdManager(t, time.Minute)

	signed, err := signer.CreateLink("user@example.com", "chl")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	if _, err := verifier.ParseLink(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestLinkExpired(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	// Built directly so the negative TTL yields an already expired token.
	m := &Manager{config: Config{
		TTL:           -time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	}}

	signed, err := m.CreateLink("user@example.com", "chl")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	if _, err := m.ParseLink(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestManagerConfigValidation(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero ttl", Config{SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub}},
		{"hs256 missing key", Config{TTL: time.Minute, SigningMethod: MethodHS256}},
		{"ed25519 missing public key", Config{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv}},
		{"unknown method", Config{TTL: time.Minute, SigningMethod: "rs256", PrivateKey: priv}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
