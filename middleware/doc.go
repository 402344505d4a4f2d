// Package middleware exposes HTTP middleware adapters that enforce the
// engine's session and role rules on inbound requests.
//
// # Guards
//
//   - [Guard] admits any authenticated session with an active plan.
//   - [RequireRoles] additionally restricts the handler to a role list.
//
// Each guard derives the client identity from the request, consults the
// engine's session snapshot, and either injects the session user into the
// request context or redirects to the destination the routing policy
// resolves for the caller.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement authorization logic itself; all decisions come from the
// engine's snapshot and routing policy.
//
// # What this package must NOT do
//
//   - Verify passwords or touch the credential repository.
//   - Access Redis (the engine handles I/O).
//   - Make authorization decisions beyond what the policy resolves.
package middleware
