package sessionkit

import (
	"testing"
	"time"

	"github.com/conectaworking/sessionkit/routing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "pointer ttl negative",
			mutate: func(c *Config) {
				c.Session.PointerTTL = -time.Second
			},
			wantValid: false,
		},
		{
			name: "pointer ttl sub-second",
			mutate: func(c *Config) {
				c.Session.PointerTTL = 500 * time.Millisecond
			},
			wantValid: false,
		},
		{
			name: "sliding without ttl",
			mutate: func(c *Config) {
				c.Session.SlidingExpiration = true
				c.Session.PointerTTL = 0
			},
			wantValid: false,
		},
		{
			name: "sliding with ttl",
			mutate: func(c *Config) {
				c.Session.SlidingExpiration = true
				c.Session.PointerTTL = time.Hour
			},
			wantValid: true,
		},
		{
			name: "argon2 memory too small",
			mutate: func(c *Config) {
				c.Password.Memory = 4096
			},
			wantValid: false,
		},
		{
			name: "argon2 time zero",
			mutate: func(c *Config) {
				c.Password.Time = 0
			},
			wantValid: false,
		},
		{
			name: "argon2 salt too short",
			mutate: func(c *Config) {
				c.Password.SaltLength = 8
			},
			wantValid: false,
		},
		{
			name: "argon2 key too short",
			mutate: func(c *Config) {
				c.Password.KeyLength = 8
			},
			wantValid: false,
		},
		{
			name: "login throttle without attempts",
			mutate: func(c *Config) {
				c.Security.EnableLoginThrottle = true
				c.Security.MaxLoginAttempts = 0
			},
			wantValid: false,
		},
		{
			name: "login throttle without cooldown",
			mutate: func(c *Config) {
				c.Security.EnableIPThrottle = true
				c.Security.LoginCooldown = 0
			},
			wantValid: false,
		},
		{
			name: "signup throttle without cooldown",
			mutate: func(c *Config) {
				c.Security.EnableSignupThrottle = true
				c.Security.SignupCooldown = 0
			},
			wantValid: false,
		},
		{
			name: "verification without ttl",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
				c.Verification.ChallengeTTL = 0
			},
			wantValid: false,
		},
		{
			name: "verification without attempts",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
				c.Verification.MaxAttempts = 0
			},
			wantValid: false,
		},
		{
			name: "verification unsigned tokens",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
			},
			wantValid: true,
		},
		{
			name: "verification ed25519 without keys",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
				c.Verification.SigningMethod = "ed25519"
			},
			wantValid: false,
		},
		{
			name: "verification hs256 without key",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
				c.Verification.SigningMethod = "hs256"
			},
			wantValid: false,
		},
		{
			name: "verification hs256 with key",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
				c.Verification.SigningMethod = "hs256"
				c.Verification.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
			},
			wantValid: true,
		},
		{
			name: "verification unknown signing method",
			mutate: func(c *Config) {
				c.Verification.Enabled = true
				c.Verification.SigningMethod = "rs256"
			},
			wantValid: false,
		},
		{
			name: "route override with empty role",
			mutate: func(c *Config) {
				c.Routes.Destinations = map[string]routing.Destination{"": "/nowhere"}
			},
			wantValid: false,
		},
		{
			name: "route override with empty destination",
			mutate: func(c *Config) {
				c.Routes.Destinations = map[string]routing.Destination{"free": ""}
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, tt := range []struct {
		name string
		cfg  Config
	}{
		{"default", DefaultConfig()},
		{"high security", HighSecurityConfig()},
		{"high throughput", HighThroughputConfig()},
	} {
		if err := tt.cfg.Validate(); err != nil {
			t.Errorf("%s preset Validate() = %v, want nil", tt.name, err)
		}
	}
}
