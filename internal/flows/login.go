package flows

import (
	"context"
	"errors"
	"time"

	"github.com/conectaworking/sessionkit/routing"
)

// UserRecord is the flow-local user model. The root engine converts its
// repository records into this shape before delegating.
type UserRecord struct {
	UserID       string
	Email        string
	PasswordHash string
	Role         string
	PlanActive   bool
}

// LoginResult carries the authenticated user and the destination the
// redirect policy chose for them.
type LoginResult struct {
	User        UserRecord
	Destination routing.Destination
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginRateLimited int
	Redirect         int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess     string
	LoginFailure     string
	LoginRateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	LoginRateLimited   error
	PersistenceFailure error
	UnknownFailure     error
	CredentialNotFound error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	PasswordUpgradeOnLogin bool

	ClientIDFromContext func(context.Context) string
	ClientIPFromContext func(context.Context) string
	Now                 func() time.Time

	CheckLoginRate     func(context.Context, string, string) error
	IncrementLoginRate func(context.Context, string, string) error
	ResetLoginRate     func(context.Context, string, string) error

	GetUserByEmail       func(context.Context, string) (UserRecord, error)
	VerifyPassword       func(string, string) (bool, error)
	PasswordNeedsUpgrade func(string) (bool, error)
	HashPassword         func(string) (string, error)
	UpdatePasswordHash   func(context.Context, string, string) error

	SavePointer func(context.Context, string, string) error
	Resolve     func(string, bool) routing.Destination
	Navigate    func(context.Context, routing.Destination)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the login flow. On success the durable session
// pointer is written before any navigation happens, so a crash between
// the two leaves the user logged in rather than redirected and lost.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (*LoginResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ClientIDFromContext == nil {
		deps.ClientIDFromContext = func(context.Context) string { return "" }
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.GetUserByEmail == nil ||
		deps.VerifyPassword == nil ||
		deps.SavePointer == nil ||
		deps.Resolve == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)
	clientID := deps.ClientIDFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, email, ip); err != nil {
			deps.MetricInc(deps.Metrics.LoginRateLimited)
			deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, "", email, "", deps.Errors.LoginRateLimited, nil)
			return nil, deps.Errors.LoginRateLimited
		}
	}

	if email == "" || password == "" {
		return nil, runFailLoginAttempt(ctx, email, ip, "", "empty_input", deps)
	}

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, deps.Errors.CredentialNotFound) {
			return nil, runFailLoginAttempt(ctx, email, ip, "", "unknown_email", deps)
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", email, "", err, func() map[string]string {
			return map[string]string{"reason": "repository_unavailable"}
		})
		return nil, deps.Errors.UnknownFailure
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, runFailLoginAttempt(ctx, email, ip, user.UserID, "password_mismatch", deps)
	}

	if deps.PasswordUpgradeOnLogin && deps.PasswordNeedsUpgrade != nil {
		if needsUpgrade, err := deps.PasswordNeedsUpgrade(user.PasswordHash); err == nil && needsUpgrade {
			if upgradedHash, err := deps.HashPassword(password); err == nil {
				if err := deps.UpdatePasswordHash(ctx, user.Email, upgradedHash); err != nil {
					deps.Warn("sessionkit: password hash upgrade update failed")
				}
			} else {
				deps.Warn("sessionkit: password hash upgrade generation failed")
			}
		}
	}
	password = ""

	if err := deps.SavePointer(ctx, clientID, user.Email); err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.UserID, email, "", deps.Errors.PersistenceFailure, func() map[string]string {
			return map[string]string{"reason": "pointer_save_failed"}
		})
		return nil, deps.Errors.PersistenceFailure
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email, ip); err != nil {
			deps.Warn("sessionkit: login limiter reset failed")
		}
	}

	dest := deps.Resolve(user.Role, user.PlanActive)
	if deps.Navigate != nil {
		deps.Navigate(ctx, dest)
		deps.MetricInc(deps.Metrics.Redirect)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.UserID, email, string(dest), nil, nil)

	return &LoginResult{
		User:        user,
		Destination: dest,
	}, nil
}

func runFailLoginAttempt(
	ctx context.Context,
	email string,
	ip string,
	userID string,
	reason string,
	deps LoginDeps,
) error {
	if deps.IncrementLoginRate != nil {
		if err := deps.IncrementLoginRate(ctx, email, ip); err != nil {
			deps.MetricInc(deps.Metrics.LoginRateLimited)
			deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, userID, email, "", deps.Errors.LoginRateLimited, nil)
			return deps.Errors.LoginRateLimited
		}
	}
	deps.MetricInc(deps.Metrics.LoginFailure)
	deps.EmitAudit(ctx, deps.Events.LoginFailure, false, userID, email, "", deps.Errors.InvalidCredentials, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	return deps.Errors.InvalidCredentials
}
