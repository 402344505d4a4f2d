// Package routing implements the redirect policy: the pure mapping from a
// user's role and plan-active flag to the navigation destination they should
// land on.
//
// A [Policy] is built once (register destinations, then [Policy.Freeze]) and
// is immutable and lock-free afterwards. Resolve is the hot path: it is total
// over every role string, never errors, and never allocates.
//
// The plan-active flag has absolute priority: an inactive plan routes to the
// inactive-plan destination regardless of role. Unknown or empty roles fall
// back to the login destination.
package routing
