package sessionkit

import (
	"errors"
	"time"

	"github.com/conectaworking/sessionkit/routing"
)

// Config holds all engine tunables. Instances are configured during
// initialization and treated as immutable afterwards; Build clones the
// config, so later mutation of the caller's copy has no effect.
type Config struct {
	Session      SessionConfig
	Password     PasswordConfig
	Security     SecurityConfig
	Verification VerificationConfig
	Routes       RoutesConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the durable session pointer in Redis.
//
// PointerTTL of zero means the pointer never expires, which matches the
// localStorage semantics this engine replaces. SlidingExpiration only
// applies when PointerTTL is positive.
type SessionConfig struct {
	RedisPrefix       string
	PointerTTL        time.Duration
	SlidingExpiration bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the Argon2id parameters. Memory is in KB.
type PasswordConfig struct {
	Memory         uint32
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls the optional login and signup throttles. All
// throttles default to disabled; the core contract is that repeated wrong
// passwords keep returning invalid-credentials, so hosts opt in.
type SecurityConfig struct {
	EnableLoginThrottle  bool
	EnableIPThrottle     bool
	EnableSignupThrottle bool
	MaxLoginAttempts     int
	LoginCooldown        time.Duration
	MaxSignupAttempts    int
	SignupCooldown       time.Duration
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig controls the optional email verification challenge
// issued after signup. When SigningMethod is set, RequestEmailVerification
// additionally wraps the challenge in a signed link token; "ed25519"
// requires both keys, "hs256" requires PrivateKey only.
type VerificationConfig struct {
	Enabled       bool
	ChallengeTTL  time.Duration
	MaxAttempts   int
	SigningMethod string
	PrivateKey    []byte
	PublicKey     []byte
	LinkBaseURL   string
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig overrides individual entries of the default redirect
// policy. Zero values leave the built-in destinations untouched.
type RoutesConfig struct {
	Destinations map[string]routing.Destination
	Inactive     routing.Destination
	Fallback     routing.Destination
	AuthFlow     []routing.Destination
}

// AuditConfig controls the buffered audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the internal counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration the Builder starts
// from: no pointer TTL, all throttles off, verification off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix:       "cw",
			PointerTTL:        0,
			SlidingExpiration: false,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Security: SecurityConfig{
			EnableLoginThrottle:  false,
			EnableIPThrottle:     false,
			EnableSignupThrottle: false,
			MaxLoginAttempts:     5,
			LoginCooldown:        15 * time.Minute,
			MaxSignupAttempts:    5,
			SignupCooldown:       15 * time.Minute,
		},
		Verification: VerificationConfig{
			Enabled:      false,
			ChallengeTTL: 15 * time.Minute,
			MaxAttempts:  5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// HighSecurityConfig returns a preset with login and signup throttles
// enabled, a sliding 24h pointer TTL, stronger Argon2 parameters, and
// audit dispatch on.
func HighSecurityConfig() Config {
	cfg := defaultConfig()

	cfg.Session.PointerTTL = 24 * time.Hour
	cfg.Session.SlidingExpiration = true

	cfg.Password.Memory = 131072
	cfg.Password.Time = 4

	cfg.Security.EnableLoginThrottle = true
	cfg.Security.EnableIPThrottle = true
	cfg.Security.EnableSignupThrottle = true
	cfg.Security.MaxLoginAttempts = 3
	cfg.Security.LoginCooldown = 30 * time.Minute
	cfg.Security.MaxSignupAttempts = 3
	cfg.Security.SignupCooldown = time.Hour

	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true

	return cfg
}

// HighThroughputConfig returns a preset tuned for request volume: lighter
// Argon2 parameters, no per-IP throttle, metrics on without latency
// histograms.
func HighThroughputConfig() Config {
	cfg := defaultConfig()

	cfg.Password.Memory = 32768
	cfg.Password.Time = 2
	cfg.Password.Parallelism = 4

	cfg.Security.EnableLoginThrottle = true
	cfg.Security.EnableIPThrottle = false
	cfg.Security.MaxLoginAttempts = 10
	cfg.Security.LoginCooldown = 5 * time.Minute

	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = false

	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Verification.PrivateKey = cloneBytes(cfg.Verification.PrivateKey)
	out.Verification.PublicKey = cloneBytes(cfg.Verification.PublicKey)
	if cfg.Routes.Destinations != nil {
		out.Routes.Destinations = make(map[string]routing.Destination, len(cfg.Routes.Destinations))
		for role, dest := range cfg.Routes.Destinations {
			out.Routes.Destinations[role] = dest
		}
	}
	if cfg.Routes.AuthFlow != nil {
		out.Routes.AuthFlow = make([]routing.Destination, len(cfg.Routes.AuthFlow))
		copy(out.Routes.AuthFlow, cfg.Routes.AuthFlow)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the config for internal consistency. Build calls this
// before constructing the engine.
func (c *Config) Validate() error {
	// Session
	if c.Session.PointerTTL < 0 {
		return errors.New("Session PointerTTL must be >= 0")
	}
	if c.Session.PointerTTL > 0 && c.Session.PointerTTL < time.Second {
		return errors.New("Session PointerTTL must be >= 1s when set")
	}
	if c.Session.SlidingExpiration && c.Session.PointerTTL <= 0 {
		return errors.New("Session SlidingExpiration requires a positive PointerTTL")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Security
	if c.Security.EnableLoginThrottle || c.Security.EnableIPThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("MaxLoginAttempts must be > 0 when a login throttle is enabled")
		}
		if c.Security.LoginCooldown <= 0 {
			return errors.New("LoginCooldown must be > 0 when a login throttle is enabled")
		}
	}
	if c.Security.EnableSignupThrottle {
		if c.Security.MaxSignupAttempts <= 0 {
			return errors.New("MaxSignupAttempts must be > 0 when the signup throttle is enabled")
		}
		if c.Security.SignupCooldown <= 0 {
			return errors.New("SignupCooldown must be > 0 when the signup throttle is enabled")
		}
	}

	// Verification
	if c.Verification.Enabled {
		if c.Verification.ChallengeTTL <= 0 {
			return errors.New("Verification ChallengeTTL must be > 0")
		}
		if c.Verification.MaxAttempts <= 0 {
			return errors.New("Verification MaxAttempts must be > 0")
		}
		switch c.Verification.SigningMethod {
		case "":
			// unsigned challenge tokens
		case "ed25519":
			if len(c.Verification.PrivateKey) == 0 || len(c.Verification.PublicKey) == 0 {
				return errors.New("ed25519 verification links require PrivateKey and PublicKey")
			}
		case "hs256":
			if len(c.Verification.PrivateKey) == 0 {
				return errors.New("hs256 verification links require PrivateKey")
			}
		default:
			return errors.New("unsupported verification link signing method")
		}
	}

	// Routes
	for role, dest := range c.Routes.Destinations {
		if role == "" {
			return errors.New("Routes Destinations must not contain an empty role")
		}
		if dest == "" {
			return errors.New("Routes Destinations must not contain an empty destination")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
