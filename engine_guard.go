package sessionkit

import (
	"context"

	"github.com/conectaworking/sessionkit/routing"
)

// Authorize is the route guard. Pages call it with their own path and
// the roles allowed to see them; an empty role list admits any
// authenticated user.
//
// While the session is still resolving it returns Loading=true and does
// not navigate, so guarded pages render their loading state instead of
// bouncing a user whose session has not been read yet. Anonymous
// callers are sent to the fallback destination. Authenticated callers
// whose role is not allowed, or whose plan is inactive, are bounced to
// the destination the policy resolves for them; navigation is skipped
// when they are already there.
func (e *Engine) Authorize(ctx context.Context, currentPath string, allowedRoles ...Role) GuardResult {
	snap := e.Snapshot()

	if snap.Loading {
		return GuardResult{Loading: true}
	}

	if snap.User == nil {
		dest := e.policy.FallbackDestination()
		if currentPath != string(dest) {
			e.navigate(ctx, dest)
			e.metrics.Inc(MetricGuardBounce)
		}
		return GuardResult{}
	}

	user := snap.User
	own := e.policy.Resolve(string(user.Role), user.PlanActive)

	if !user.PlanActive {
		if currentPath != string(own) {
			e.navigate(ctx, own)
			e.metrics.Inc(MetricGuardBounce)
		}
		return GuardResult{}
	}

	if !roleAllowed(user.Role, allowedRoles) {
		if currentPath != string(own) {
			e.navigate(ctx, own)
			e.metrics.Inc(MetricGuardBounce)
		}
		return GuardResult{}
	}

	return GuardResult{User: user}
}

func roleAllowed(role Role, allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// ReconcileLocation applies the automatic redirect rules for the
// current path: anonymous users on a protected page go to login, and
// authenticated users sitting on an auth-flow page (login, signup,
// verify-email) go to their resolved destination. Nothing happens while
// loading, and nothing happens when the user is already where they
// belong.
func (e *Engine) ReconcileLocation(ctx context.Context, currentPath string) {
	snap := e.Snapshot()

	if snap.Loading {
		return
	}

	if snap.User == nil {
		if !e.policy.IsAuthFlowPath(currentPath) {
			dest := e.policy.FallbackDestination()
			if currentPath != string(dest) {
				e.navigate(ctx, dest)
				e.metrics.Inc(MetricRedirect)
			}
		}
		return
	}

	if e.policy.IsAuthFlowPath(currentPath) {
		dest := e.policy.Resolve(string(snap.User.Role), snap.User.PlanActive)
		if currentPath != string(dest) {
			e.navigate(ctx, dest)
			e.metrics.Inc(MetricRedirect)
		}
	}
}

// RedirectFor resolves the destination for a role and plan state
// without touching session state or the navigator.
func (e *Engine) RedirectFor(role Role, planActive bool) routing.Destination {
	return e.policy.Resolve(string(role), planActive)
}
