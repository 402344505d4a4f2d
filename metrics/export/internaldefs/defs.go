package internaldefs

import (
	sessionkit "github.com/conectaworking/sessionkit"
)

// CounterDef maps one engine counter to its stable exposition name.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef maps one engine histogram to its stable exposition name.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a fixed order so both
// exporters render identical output.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricLoginSuccess, Name: "sessionkit_login_success_total", Help: "Successful login attempts."},
	{ID: sessionkit.MetricLoginFailure, Name: "sessionkit_login_failure_total", Help: "Failed login attempts."},
	{ID: sessionkit.MetricLoginRateLimited, Name: "sessionkit_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: sessionkit.MetricSignupSuccess, Name: "sessionkit_signup_success_total", Help: "Successful account creations."},
	{ID: sessionkit.MetricSignupDuplicate, Name: "sessionkit_signup_duplicate_total", Help: "Signups rejected as duplicate email."},
	{ID: sessionkit.MetricSignupRateLimited, Name: "sessionkit_signup_rate_limited_total", Help: "Rate-limited signup attempts."},
	{ID: sessionkit.MetricSignupFailure, Name: "sessionkit_signup_failure_total", Help: "Signups failed for other reasons."},
	{ID: sessionkit.MetricLogout, Name: "sessionkit_logout_total", Help: "Logout operations."},
	{ID: sessionkit.MetricLogoutFailure, Name: "sessionkit_logout_failure_total", Help: "Logouts that failed to clear the session pointer."},
	{ID: sessionkit.MetricResolveAuthenticated, Name: "sessionkit_resolve_authenticated_total", Help: "Session resolutions that found a valid session."},
	{ID: sessionkit.MetricResolveAnonymous, Name: "sessionkit_resolve_anonymous_total", Help: "Session resolutions with no stored pointer."},
	{ID: sessionkit.MetricResolveDangling, Name: "sessionkit_resolve_dangling_total", Help: "Session pointers referencing a missing credential."},
	{ID: sessionkit.MetricRedirect, Name: "sessionkit_redirect_total", Help: "Policy redirects emitted after login and signup."},
	{ID: sessionkit.MetricGuardBounce, Name: "sessionkit_guard_bounce_total", Help: "Requests bounced by the authorization guard."},
	{ID: sessionkit.MetricVerificationRequest, Name: "sessionkit_email_verification_request_total", Help: "Email verification requests."},
	{ID: sessionkit.MetricVerificationSuccess, Name: "sessionkit_email_verification_success_total", Help: "Successful email verifications."},
	{ID: sessionkit.MetricVerificationFailure, Name: "sessionkit_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: sessionkit.MetricVerificationAttemptsExceeded, Name: "sessionkit_email_verification_attempts_exceeded_total", Help: "Verification challenges invalidated due to attempt cap."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricResolveLatency, Name: "sessionkit_resolve_latency_seconds", Help: "Session resolution latency histogram."},
}

// HistogramBounds are the upper bounds of the fixed latency buckets, in
// seconds, as rendered by the Prometheus exporter.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds the bound labels in attribute-safe form for
// the OTel exporter.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
