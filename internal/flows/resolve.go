package flows

import (
	"context"
	"errors"
	"time"
)

// ResolveResult is the outcome of resolving the durable pointer into a
// session. Found is false when the client is anonymous, including when a
// dangling pointer had to be discarded.
type ResolveResult struct {
	User     UserRecord
	Found    bool
	Dangling bool
}

// ResolveMetrics carries metric IDs needed by session resolution.
type ResolveMetrics struct {
	ResolveAuthenticated int
	ResolveAnonymous     int
	ResolveDangling      int
	ResolveLatency       int
}

// ResolveEvents carries audit event names used by session resolution.
type ResolveEvents struct {
	ResolveDangling string
}

// ResolveErrors carries host-level sentinel errors used by session
// resolution.
type ResolveErrors struct {
	EngineNotReady     error
	PointerNotFound    error
	CredentialNotFound error
	UnknownFailure     error
}

// ResolveDeps captures session resolution dependencies.
type ResolveDeps struct {
	SlidingExpiration bool

	ClientIDFromContext func(context.Context) string
	Now                 func() time.Time

	GetPointer     func(context.Context, string) (string, error)
	ClearPointer   func(context.Context, string) error
	TouchPointer   func(context.Context, string) error
	GetUserByEmail func(context.Context, string) (UserRecord, error)

	MetricInc     func(int)
	MetricObserve func(int, time.Duration)
	EmitAudit     func(context.Context, string, bool, string, string, string, error, func() map[string]string)
	Warn          func(string, ...any)

	Metrics ResolveMetrics
	Events  ResolveEvents
	Errors  ResolveErrors
}

// RunResolveSession resolves the durable pointer for the calling client
// into a full user. A pointer whose email no longer resolves to a
// credential record is stale; the flow clears it and reports anonymous
// rather than surfacing a half-authenticated state.
func RunResolveSession(ctx context.Context, deps ResolveDeps) (ResolveResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.MetricObserve == nil {
		deps.MetricObserve = func(int, time.Duration) {}
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
	if deps.GetPointer == nil || deps.GetUserByEmail == nil {
		return ResolveResult{}, deps.Errors.EngineNotReady
	}

	start := deps.Now()
	clientID := deps.ClientIDFromContext(ctx)

	email, err := deps.GetPointer(ctx, clientID)
	if err != nil {
		if errors.Is(err, deps.Errors.PointerNotFound) {
			deps.MetricInc(deps.Metrics.ResolveAnonymous)
			deps.MetricObserve(deps.Metrics.ResolveLatency, deps.Now().Sub(start))
			return ResolveResult{}, nil
		}
		return ResolveResult{}, deps.Errors.UnknownFailure
	}

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, deps.Errors.CredentialNotFound) {
			if deps.ClearPointer != nil {
				if cerr := deps.ClearPointer(ctx, clientID); cerr != nil {
					deps.Warn("sessionkit: stale pointer clear failed")
				}
			}
			deps.MetricInc(deps.Metrics.ResolveDangling)
			deps.MetricInc(deps.Metrics.ResolveAnonymous)
			deps.EmitAudit(ctx, deps.Events.ResolveDangling, false, "", email, "", deps.Errors.CredentialNotFound, nil)
			deps.MetricObserve(deps.Metrics.ResolveLatency, deps.Now().Sub(start))
			return ResolveResult{Dangling: true}, nil
		}
		return ResolveResult{}, deps.Errors.UnknownFailure
	}

	if deps.SlidingExpiration && deps.TouchPointer != nil {
		if terr := deps.TouchPointer(ctx, clientID); terr != nil {
			deps.Warn("sessionkit: pointer touch failed")
		}
	}

	deps.MetricInc(deps.Metrics.ResolveAuthenticated)
	deps.MetricObserve(deps.Metrics.ResolveLatency, deps.Now().Sub(start))
	return ResolveResult{User: user, Found: true}, nil
}
