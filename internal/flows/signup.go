package flows

import (
	"context"
	"errors"
	"time"

	"github.com/conectaworking/sessionkit/routing"
)

// SignupRequest is the flow-local signup input. Metadata defaults are
// already applied by the root engine.
type SignupRequest struct {
	Email      string
	Password   string
	Role       string
	PlanActive bool
	FirstName  string
	LastName   string
	Company    string
	Phone      string
}

// SignupResult carries the freshly registered record and where the flow
// sent the visitor. No session is started; the record is returned for
// display only.
type SignupResult struct {
	User        UserRecord
	Destination routing.Destination
}

// SignupMetrics carries metric IDs needed by the signup flow.
type SignupMetrics struct {
	SignupSuccess     int
	SignupDuplicate   int
	SignupRateLimited int
	SignupFailure     int
	Redirect          int
}

// SignupEvents carries audit event names used by the signup flow.
type SignupEvents struct {
	SignupSuccess     string
	SignupDuplicate   string
	SignupRateLimited string
	SignupFailure     string
}

// SignupErrors carries host-level sentinel errors used by the signup flow.
type SignupErrors struct {
	EngineNotReady         error
	InvalidCredentials     error
	EmailAlreadyRegistered error
	SignupRateLimited      error
	UnknownFailure         error
}

// SignupDeps captures signup flow dependencies.
type SignupDeps struct {
	VerifyEmailDestination routing.Destination

	ClientIPFromContext func(context.Context) string
	Now                 func() time.Time

	CheckSignupRate func(context.Context, string) error

	HashPassword func(string) (string, error)
	CreateUser   func(context.Context, SignupRequest, string) (UserRecord, error)
	Navigate     func(context.Context, routing.Destination)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, string, error, func() map[string]string)

	Metrics SignupMetrics
	Events  SignupEvents
	Errors  SignupErrors
}

// RunSignup executes the signup flow. A duplicate email fails without
// touching the existing record or the caller's current session. On
// success the flow navigates to the email verification destination but
// starts no session: the pointer slot stays untouched and the visitor
// signs in explicitly once verified.
func RunSignup(ctx context.Context, req SignupRequest, deps SignupDeps) (*SignupResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error, func() map[string]string) {}
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.HashPassword == nil || deps.CreateUser == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckSignupRate != nil {
		if err := deps.CheckSignupRate(ctx, ip); err != nil {
			deps.MetricInc(deps.Metrics.SignupRateLimited)
			deps.EmitAudit(ctx, deps.Events.SignupRateLimited, false, "", req.Email, "", deps.Errors.SignupRateLimited, nil)
			return nil, deps.Errors.SignupRateLimited
		}
	}

	if req.Email == "" || req.Password == "" {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", req.Email, "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "empty_input"}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", req.Email, "", err, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return nil, deps.Errors.InvalidCredentials
	}
	req.Password = ""

	user, err := deps.CreateUser(ctx, req, hash)
	if err != nil {
		if errors.Is(err, deps.Errors.EmailAlreadyRegistered) {
			deps.MetricInc(deps.Metrics.SignupDuplicate)
			deps.EmitAudit(ctx, deps.Events.SignupDuplicate, false, "", req.Email, "", deps.Errors.EmailAlreadyRegistered, nil)
			return nil, deps.Errors.EmailAlreadyRegistered
		}
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", req.Email, "", err, func() map[string]string {
			return map[string]string{"reason": "repository_unavailable"}
		})
		return nil, deps.Errors.UnknownFailure
	}

	dest := deps.VerifyEmailDestination
	if dest == "" {
		dest = routing.DestVerifyEmail
	}
	if deps.Navigate != nil {
		deps.Navigate(ctx, dest)
		deps.MetricInc(deps.Metrics.Redirect)
	}

	deps.MetricInc(deps.Metrics.SignupSuccess)
	deps.EmitAudit(ctx, deps.Events.SignupSuccess, true, user.UserID, req.Email, string(dest), nil, nil)

	return &SignupResult{
		User:        user,
		Destination: dest,
	}, nil
}
