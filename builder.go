package sessionkit

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conectaworking/sessionkit/internal"
	"github.com/conectaworking/sessionkit/internal/audit"
	"github.com/conectaworking/sessionkit/internal/flows"
	"github.com/conectaworking/sessionkit/internal/rate"
	"github.com/conectaworking/sessionkit/internal/stores"
	"github.com/conectaworking/sessionkit/password"
	"github.com/conectaworking/sessionkit/routing"
	"github.com/conectaworking/sessionkit/session"
	"github.com/conectaworking/sessionkit/token"
)

// Builder assembles an Engine. Configure it fluently, then call Build
// exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	repository CredentialRepository
	navigator  Navigator
	auditSink  AuditSink

	built bool
}

func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithRepository(repo CredentialRepository) *Builder {
	b.repository = repo
	return b
}

func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, freezes the redirect policy, and
// wires the flow service.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.repository == nil {
		return nil, errors.New("credential repository required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- REDIRECT POLICY --------
	policy := routing.NewPolicy()
	for role, dest := range cfg.Routes.Destinations {
		if err := policy.SetDestination(role, dest); err != nil {
			return nil, err
		}
	}
	if cfg.Routes.Inactive != "" {
		if err := policy.SetInactiveDestination(cfg.Routes.Inactive); err != nil {
			return nil, err
		}
	}
	if cfg.Routes.Fallback != "" {
		if err := policy.SetFallbackDestination(cfg.Routes.Fallback); err != nil {
			return nil, err
		}
	}
	if len(cfg.Routes.AuthFlow) > 0 {
		paths := make([]string, len(cfg.Routes.AuthFlow))
		for i, dest := range cfg.Routes.AuthFlow {
			paths[i] = string(dest)
		}
		if err := policy.SetAuthFlowPaths(paths); err != nil {
			return nil, err
		}
	}
	policy.Freeze()

	// -------- POINTER STORE --------
	pointerStore := session.NewStore(
		b.redis,
		cfg.Session.RedisPrefix,
		cfg.Session.PointerTTL,
		cfg.Session.SlidingExpiration,
	)

	engine := &Engine{
		config:       cfg,
		policy:       policy,
		pointerStore: pointerStore,
		repository:   b.repository,
	}

	engine.navigator = b.navigator
	if engine.navigator == nil {
		engine.navigator = NoOpNavigator{}
	}

	engine.rateLimiter = rate.New(b.redis, rate.Config{
		EnableLoginThrottle:  cfg.Security.EnableLoginThrottle,
		EnableIPThrottle:     cfg.Security.EnableIPThrottle,
		EnableSignupThrottle: cfg.Security.EnableSignupThrottle,
		MaxLoginAttempts:     cfg.Security.MaxLoginAttempts,
		LoginCooldown:        cfg.Security.LoginCooldown,
		MaxSignupAttempts:    cfg.Security.MaxSignupAttempts,
		SignupCooldown:       cfg.Security.SignupCooldown,
	})

	verificationPrefix := ""
	if cfg.Session.RedisPrefix != "" {
		verificationPrefix = cfg.Session.RedisPrefix + ":vrf"
	}
	engine.verificationStore = stores.NewVerificationStore(b.redis, verificationPrefix)

	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	ph, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.hasher = ph

	if cfg.Verification.Enabled && cfg.Verification.SigningMethod != "" {
		lm, err := token.NewManager(token.Config{
			TTL:           cfg.Verification.ChallengeTTL,
			SigningMethod: token.SigningMethod(cfg.Verification.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Verification.PrivateKey),
			PublicKey:     cloneBytes(cfg.Verification.PublicKey),
			Issuer:        cfg.Verification.LinkBaseURL,
		})
		if err != nil {
			return nil, err
		}
		engine.linkManager = lm
	}

	engine.flows = flows.New(buildFlowDeps(engine))

	b.built = true
	return engine, nil
}

// buildFlowDeps wires the flow dependency closures against the engine's
// components and sentinel errors.
func buildFlowDeps(e *Engine) flows.Deps {
	cfg := e.config

	getUser := func(ctx context.Context, email string) (flows.UserRecord, error) {
		rec, err := e.repository.FindByEmail(ctx, email)
		if err != nil {
			return flows.UserRecord{}, err
		}
		return flows.UserRecord{
			UserID:       rec.ID,
			Email:        rec.Email,
			PasswordHash: rec.PasswordHash,
			Role:         string(rec.Metadata.Role),
			PlanActive:   rec.Metadata.PlanActive,
		}, nil
	}

	savePointer := func(ctx context.Context, clientID, email string) error {
		now := time.Now().Unix()
		return e.pointerStore.Set(ctx, clientID, &session.Pointer{
			Email:      email,
			CreatedAt:  now,
			LastSeenAt: now,
		})
	}

	clearPointer := func(ctx context.Context, clientID string) error {
		return e.pointerStore.Clear(ctx, clientID)
	}

	deps := flows.Deps{}

	// -------- LOGIN --------
	login := flows.LoginDeps{
		ClientIDFromContext: clientIDFromContext,
		ClientIPFromContext: clientIPFromContext,
		GetUserByEmail:      getUser,
		VerifyPassword:      e.hasher.Verify,
		SavePointer:         savePointer,
		Resolve:             e.policy.Resolve,
		Navigate:            e.navigate,
		MetricInc:           e.metricInc,
		EmitAudit:           e.emitAudit,
		Warn:                log.Printf,
		Metrics: flows.LoginMetrics{
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
			LoginRateLimited: int(MetricLoginRateLimited),
			Redirect:         int(MetricRedirect),
		},
		Events: flows.LoginEvents{
			LoginSuccess:     "login.success",
			LoginFailure:     "login.failure",
			LoginRateLimited: "login.rate_limited",
		},
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			LoginRateLimited:   ErrLoginRateLimited,
			PersistenceFailure: ErrPersistenceFailure,
			UnknownFailure:     ErrUnknownFailure,
			CredentialNotFound: ErrCredentialNotFound,
		},
	}
	if cfg.Security.EnableLoginThrottle || cfg.Security.EnableIPThrottle {
		login.CheckLoginRate = e.rateLimiter.CheckLogin
		login.IncrementLoginRate = e.rateLimiter.IncrementLogin
		login.ResetLoginRate = e.rateLimiter.ResetLogin
	}
	if upgrader, ok := e.repository.(PasswordHashUpgrader); ok && cfg.Password.UpgradeOnLogin {
		login.PasswordUpgradeOnLogin = true
		login.PasswordNeedsUpgrade = e.hasher.NeedsUpgrade
		login.HashPassword = e.hasher.Hash
		login.UpdatePasswordHash = upgrader.UpdatePasswordHash
	}
	deps.Login = login

	// -------- SIGNUP --------
	signup := flows.SignupDeps{
		VerifyEmailDestination: routing.DestVerifyEmail,
		ClientIPFromContext:    clientIPFromContext,
		HashPassword:           e.hasher.Hash,
		CreateUser: func(ctx context.Context, req flows.SignupRequest, hash string) (flows.UserRecord, error) {
			rec, err := e.repository.Create(ctx, RegisterInput{
				Email:        req.Email,
				PasswordHash: hash,
				Metadata: UserMetadata{
					Role:       Role(req.Role),
					PlanActive: req.PlanActive,
					FirstName:  req.FirstName,
					LastName:   req.LastName,
					Company:    req.Company,
					Phone:      req.Phone,
					CreatedAt:  time.Now(),
				},
			})
			if err != nil {
				return flows.UserRecord{}, err
			}
			return flows.UserRecord{
				UserID:       rec.ID,
				Email:        rec.Email,
				PasswordHash: rec.PasswordHash,
				Role:         string(rec.Metadata.Role),
				PlanActive:   rec.Metadata.PlanActive,
			}, nil
		},
		Navigate:  e.navigate,
		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,
		Metrics: flows.SignupMetrics{
			SignupSuccess:     int(MetricSignupSuccess),
			SignupDuplicate:   int(MetricSignupDuplicate),
			SignupRateLimited: int(MetricSignupRateLimited),
			SignupFailure:     int(MetricSignupFailure),
			Redirect:          int(MetricRedirect),
		},
		Events: flows.SignupEvents{
			SignupSuccess:     "signup.success",
			SignupDuplicate:   "signup.duplicate",
			SignupRateLimited: "signup.rate_limited",
			SignupFailure:     "signup.failure",
		},
		Errors: flows.SignupErrors{
			EngineNotReady:         ErrEngineNotReady,
			InvalidCredentials:     ErrInvalidCredentials,
			EmailAlreadyRegistered: ErrEmailAlreadyRegistered,
			SignupRateLimited:      ErrSignupRateLimited,
			UnknownFailure:         ErrUnknownFailure,
		},
	}
	if cfg.Security.EnableSignupThrottle {
		signup.CheckSignupRate = e.rateLimiter.CheckSignup
	}
	deps.Signup = signup

	// -------- LOGOUT --------
	deps.Logout = flows.LogoutDeps{
		LoginDestination:    e.policy.FallbackDestination(),
		ClientIDFromContext: clientIDFromContext,
		ClearPointer:        clearPointer,
		Navigate:            e.navigate,
		MetricInc:           e.metricInc,
		EmitAudit:           e.emitAudit,
		Metrics: flows.LogoutMetrics{
			Logout:        int(MetricLogout),
			LogoutFailure: int(MetricLogoutFailure),
			Redirect:      int(MetricRedirect),
		},
		Events: flows.LogoutEvents{
			Logout:        "logout.success",
			LogoutFailure: "logout.failure",
		},
		Errors: flows.LogoutErrors{
			EngineNotReady:     ErrEngineNotReady,
			PersistenceFailure: ErrPersistenceFailure,
		},
	}

	// -------- RESOLVE --------
	deps.Resolve = flows.ResolveDeps{
		SlidingExpiration:   cfg.Session.SlidingExpiration,
		ClientIDFromContext: clientIDFromContext,
		GetPointer: func(ctx context.Context, clientID string) (string, error) {
			ptr, err := e.pointerStore.Get(ctx, clientID)
			if err != nil {
				// A blob that no longer decodes is as useless as a missing
				// one. Clear the slot so the next resolve is a clean miss.
				if errors.Is(err, session.ErrPointerCorrupt) {
					_ = e.pointerStore.Clear(ctx, clientID)
					return "", session.ErrPointerNotFound
				}
				return "", err
			}
			return ptr.Email, nil
		},
		ClearPointer: clearPointer,
		TouchPointer: func(ctx context.Context, clientID string) error {
			return e.pointerStore.Touch(ctx, clientID, time.Now())
		},
		GetUserByEmail: getUser,
		MetricInc:      e.metricInc,
		MetricObserve:  e.metricObserve,
		EmitAudit:      e.emitAudit,
		Warn:           log.Printf,
		Metrics: flows.ResolveMetrics{
			ResolveAuthenticated: int(MetricResolveAuthenticated),
			ResolveAnonymous:     int(MetricResolveAnonymous),
			ResolveDangling:      int(MetricResolveDangling),
			ResolveLatency:       int(MetricResolveLatency),
		},
		Events: flows.ResolveEvents{
			ResolveDangling: "session.dangling_pointer",
		},
		Errors: flows.ResolveErrors{
			EngineNotReady:     ErrEngineNotReady,
			PointerNotFound:    session.ErrPointerNotFound,
			CredentialNotFound: ErrCredentialNotFound,
			UnknownFailure:     ErrUnknownFailure,
		},
	}

	// -------- VERIFICATION --------
	verification := flows.VerificationDeps{
		Enabled:        cfg.Verification.Enabled,
		ChallengeTTL:   cfg.Verification.ChallengeTTL,
		GetUserByEmail: getUser,
		NewChallenge: func() (string, []byte, error) {
			id, err := internal.NewChallengeID()
			if err != nil {
				return "", nil, err
			}
			secret, err := internal.NewChallengeSecret()
			if err != nil {
				return "", nil, err
			}
			return id.String(), secret[:], nil
		},
		EncodeToken: func(id string, secret []byte) (string, error) {
			var s [32]byte
			copy(s[:], secret)
			return internal.EncodeChallengeToken(id, s)
		},
		DecodeToken: func(tok string) (string, []byte, error) {
			id, secret, err := internal.DecodeChallengeToken(tok)
			if err != nil {
				return "", nil, err
			}
			return id, secret[:], nil
		},
		SaveChallenge: func(ctx context.Context, id, email string, secret []byte, expiresAt int64, ttl time.Duration) error {
			return e.verificationStore.Save(ctx, id, &stores.VerificationRecord{
				Email:      email,
				SecretHash: internal.HashChallengeBytes(secret),
				ExpiresAt:  expiresAt,
			}, ttl)
		},
		ConsumeChallenge: func(ctx context.Context, id string, secret []byte) (string, error) {
			rec, err := e.verificationStore.Consume(ctx, id, internal.HashChallengeBytes(secret), cfg.Verification.MaxAttempts)
			if err != nil {
				return "", err
			}
			return rec.Email, nil
		},
		MapStoreError: mapVerificationStoreError,
		MetricInc:     e.metricInc,
		EmitAudit:     e.emitAudit,
		Metrics: flows.VerificationMetrics{
			Request:          int(MetricVerificationRequest),
			Success:          int(MetricVerificationSuccess),
			Failure:          int(MetricVerificationFailure),
			AttemptsExceeded: int(MetricVerificationAttemptsExceeded),
		},
		Events: flows.VerificationEvents{
			Request:          "verification.request",
			Success:          "verification.success",
			Failure:          "verification.failure",
			AttemptsExceeded: "verification.attempts_exceeded",
		},
		Errors: flows.VerificationErrors{
			EngineNotReady:          ErrEngineNotReady,
			VerificationDisabled:    ErrVerificationDisabled,
			VerificationInvalid:     ErrVerificationInvalid,
			VerificationAttempts:    ErrVerificationAttempts,
			VerificationUnavailable: ErrVerificationUnavailable,
			CredentialNotFound:      ErrCredentialNotFound,
		},
	}
	if e.linkManager != nil {
		verification.SignLink = e.linkManager.CreateLink
	}
	deps.Verification = verification

	return deps
}

// PasswordHashUpgrader is the optional repository extension that lets
// the engine transparently re-hash passwords on login when the Argon2
// parameters have been strengthened.
type PasswordHashUpgrader interface {
	UpdatePasswordHash(ctx context.Context, email, hash string) error
}

func mapVerificationStoreError(err error) error {
	switch {
	case errors.Is(err, stores.ErrVerificationNotFound),
		errors.Is(err, stores.ErrVerificationSecretMismatch):
		return ErrVerificationInvalid
	case errors.Is(err, stores.ErrVerificationAttemptsExceeded):
		return ErrVerificationAttempts
	default:
		return ErrVerificationUnavailable
	}
}
