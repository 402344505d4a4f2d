package flows

import (
	"context"
	"errors"
	"time"
)

// VerificationMetrics carries metric IDs needed by the verification flow.
type VerificationMetrics struct {
	Request          int
	Success          int
	Failure          int
	AttemptsExceeded int
}

// VerificationEvents carries audit event names used by the verification
// flow.
type VerificationEvents struct {
	Request          string
	Success          string
	Failure          string
	AttemptsExceeded string
}

// VerificationErrors carries host-level sentinel errors used by the
// verification flow.
type VerificationErrors struct {
	EngineNotReady          error
	VerificationDisabled    error
	VerificationInvalid     error
	VerificationAttempts    error
	VerificationUnavailable error
	CredentialNotFound      error
}

// VerificationDeps captures verification flow dependencies.
type VerificationDeps struct {
	Enabled      bool
	ChallengeTTL time.Duration

	Now func() time.Time

	GetUserByEmail   func(context.Context, string) (UserRecord, error)
	NewChallenge     func() (string, []byte, error)
	EncodeToken      func(string, []byte) (string, error)
	DecodeToken      func(string) (string, []byte, error)
	SaveChallenge    func(context.Context, string, string, []byte, int64, time.Duration) error
	ConsumeChallenge func(context.Context, string, []byte) (string, error)
	SignLink         func(string, string) (string, error)
	MapStoreError    func(error) error

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, string, error, func() map[string]string)

	Metrics VerificationMetrics
	Events  VerificationEvents
	Errors  VerificationErrors
}

// RunRequestVerification issues a single-use email verification
// challenge and returns the opaque token the host mails to the user.
// When a link signer is configured the token is additionally wrapped in
// a signed link token.
func RunRequestVerification(ctx context.Context, email string, deps VerificationDeps) (string, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error, func() map[string]string) {}
	}
	if !deps.Enabled {
		return "", deps.Errors.VerificationDisabled
	}
	if deps.GetUserByEmail == nil ||
		deps.NewChallenge == nil ||
		deps.EncodeToken == nil ||
		deps.SaveChallenge == nil {
		return "", deps.Errors.EngineNotReady
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(error) error { return deps.Errors.VerificationUnavailable }
	}

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, deps.Errors.CredentialNotFound) {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Failure, false, "", email, "", deps.Errors.VerificationInvalid, func() map[string]string {
				return map[string]string{"reason": "unknown_email"}
			})
			return "", deps.Errors.VerificationInvalid
		}
		return "", deps.Errors.VerificationUnavailable
	}

	id, secret, err := deps.NewChallenge()
	if err != nil {
		return "", deps.Errors.VerificationUnavailable
	}

	ttl := deps.ChallengeTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	expiresAt := deps.Now().Add(ttl).Unix()

	if err := deps.SaveChallenge(ctx, id, user.Email, secret, expiresAt, ttl); err != nil {
		return "", deps.MapStoreError(err)
	}

	token, err := deps.EncodeToken(id, secret)
	if err != nil {
		return "", deps.Errors.VerificationUnavailable
	}

	if deps.SignLink != nil {
		signed, err := deps.SignLink(user.Email, token)
		if err != nil {
			return "", deps.Errors.VerificationUnavailable
		}
		token = signed
	}

	deps.MetricInc(deps.Metrics.Request)
	deps.EmitAudit(ctx, deps.Events.Request, true, user.UserID, user.Email, "", nil, nil)
	return token, nil
}

// RunConfirmVerification consumes a challenge token and returns the
// verified email. Challenges are single use regardless of outcome once
// the attempt budget is spent.
func RunConfirmVerification(ctx context.Context, token string, deps VerificationDeps) (string, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error, func() map[string]string) {}
	}
	if !deps.Enabled {
		return "", deps.Errors.VerificationDisabled
	}
	if deps.DecodeToken == nil || deps.ConsumeChallenge == nil {
		return "", deps.Errors.EngineNotReady
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(error) error { return deps.Errors.VerificationUnavailable }
	}
	if token == "" {
		return "", deps.Errors.VerificationInvalid
	}

	id, secret, err := deps.DecodeToken(token)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", "", "", deps.Errors.VerificationInvalid, func() map[string]string {
			return map[string]string{"reason": "malformed_token"}
		})
		return "", deps.Errors.VerificationInvalid
	}

	email, err := deps.ConsumeChallenge(ctx, id, secret)
	if err != nil {
		mapped := deps.MapStoreError(err)
		if errors.Is(mapped, deps.Errors.VerificationAttempts) {
			deps.MetricInc(deps.Metrics.AttemptsExceeded)
			deps.EmitAudit(ctx, deps.Events.AttemptsExceeded, false, "", "", "", mapped, nil)
			return "", mapped
		}
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", "", "", mapped, nil)
		return "", mapped
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, "", email, "", nil, nil)
	return email, nil
}
