package middleware

import (
	"context"
	"net"
	"net/http"

	sessionkit "github.com/conectaworking/sessionkit"
)

// ClientIDHeader carries the caller's client identifier. A cookie named
// [ClientIDCookie] takes precedence when both are present.
const ClientIDHeader = "X-Client-ID"

// ClientIDCookie is the cookie consulted for the client identifier.
const ClientIDCookie = "sessionkit_client"

type sessionUserContextKey struct{}

// UserFromContext returns the session user a guard injected for the
// current request.
func UserFromContext(ctx context.Context) (*sessionkit.ExtendedUser, bool) {
	user, ok := ctx.Value(sessionUserContextKey{}).(*sessionkit.ExtendedUser)
	return user, ok
}

// Guard admits any authenticated session with an active plan. Anonymous
// requests are redirected to the policy fallback; an inactive plan
// redirects to the destination the policy resolves for the user.
func Guard(engine *sessionkit.Engine) func(http.Handler) http.Handler {
	return RequireRoles(engine)
}

// RequireRoles admits authenticated sessions whose role is in the list.
// An empty list admits every authenticated user with an active plan.
func RequireRoles(engine *sessionkit.Engine, roles ...sessionkit.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := RequestContext(r)
			snap := engine.Snapshot()

			if snap.Loading {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session resolving", http.StatusServiceUnavailable)
				return
			}

			user := snap.User
			if user == nil {
				redirect(w, r, string(engine.Policy().FallbackDestination()))
				return
			}
			if !user.PlanActive || !roleAllowed(user.Role, roles) {
				redirect(w, r, string(engine.RedirectFor(user.Role, user.PlanActive)))
				return
			}

			ctx = context.WithValue(ctx, sessionUserContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestContext derives a request context carrying the client ID, client
// IP, and user agent so downstream handlers can call engine operations
// with full attribution.
func RequestContext(r *http.Request) context.Context {
	ctx := r.Context()

	if clientID := clientIDFromRequest(r); clientID != "" {
		ctx = sessionkit.WithClientID(ctx, clientID)
	}
	if ip := remoteIP(r); ip != "" {
		ctx = sessionkit.WithClientIP(ctx, ip)
	}
	if userAgent := r.UserAgent(); userAgent != "" {
		ctx = sessionkit.WithUserAgent(ctx, userAgent)
	}

	return ctx
}

func clientIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(ClientIDCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get(ClientIDHeader)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	if location == "" || location == r.URL.Path {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	http.Redirect(w, r, location, http.StatusFound)
}

func roleAllowed(role sessionkit.Role, allowed []sessionkit.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
