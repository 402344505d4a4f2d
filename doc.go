// Package sessionkit is the session core of the ConectaWorking platform:
// a credential store boundary, a durable session pointer, and the reactive
// session state plus redirect policy that every surface of the product
// consumes.
//
// The package is the public surface. It exposes [Engine], [Builder],
// [Config], the [CredentialRepository] and [Navigator] integration
// interfaces, and value types (ExtendedUser, SessionSnapshot,
// MetricsSnapshot). Flow orchestration, challenge stores, rate limiting,
// and audit dispatch live under internal/ and are never exported.
//
// # Architecture boundaries
//
//   - Only the engine compares password hashes or writes the session
//     pointer; repositories store, the policy routes, navigators navigate.
//   - The redirect policy ([routing.Policy]) is pure and total: an inactive
//     plan always routes to the inactive-plan destination, an unknown role
//     always falls back to login, and Resolve never fails.
//   - Every operation is attempt-once. Failures are recorded in the
//     reactive state for passive display and returned to the caller; the
//     engine never retries and nothing in this core is fatal to the host.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Render anything or know about view state; navigation is one outbound
//     Navigate call with a fixed destination.
//   - Import any sub-package that re-imports sessionkit (no import cycles).
package sessionkit
