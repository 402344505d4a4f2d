package flows

import (
	"context"

	"github.com/conectaworking/sessionkit/routing"
)

// LogoutMetrics carries metric IDs needed by the logout flow.
type LogoutMetrics struct {
	Logout        int
	LogoutFailure int
	Redirect      int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout        string
	LogoutFailure string
}

// LogoutErrors carries host-level sentinel errors used by the logout flow.
type LogoutErrors struct {
	EngineNotReady     error
	PersistenceFailure error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	LoginDestination routing.Destination

	ClientIDFromContext func(context.Context) string

	ClearPointer func(context.Context, string) error
	Navigate     func(context.Context, routing.Destination)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, string, error, func() map[string]string)

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

// RunLogout executes the logout flow. The durable pointer is cleared
// first; only after that succeeds does the flow navigate to login. A
// failed clear returns a persistence failure and the caller keeps the
// session, so the user is never stranded on the login page while still
// pointed at a live session.
func RunLogout(ctx context.Context, userID, email string, deps LogoutDeps) (routing.Destination, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error, func() map[string]string) {}
	}
	if deps.ClientIDFromContext == nil {
		deps.ClientIDFromContext = func(context.Context) string { return "" }
	}
	if deps.ClearPointer == nil {
		return "", deps.Errors.EngineNotReady
	}

	clientID := deps.ClientIDFromContext(ctx)

	if err := deps.ClearPointer(ctx, clientID); err != nil {
		deps.MetricInc(deps.Metrics.LogoutFailure)
		deps.EmitAudit(ctx, deps.Events.LogoutFailure, false, userID, email, "", deps.Errors.PersistenceFailure, func() map[string]string {
			return map[string]string{"reason": "pointer_clear_failed"}
		})
		return "", deps.Errors.PersistenceFailure
	}

	dest := deps.LoginDestination
	if dest == "" {
		dest = routing.DestLogin
	}
	if deps.Navigate != nil {
		deps.Navigate(ctx, dest)
		deps.MetricInc(deps.Metrics.Redirect)
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, true, userID, email, string(dest), nil, nil)
	return dest, nil
}
