// Package session owns the durable session pointer: the single per-client
// slot recording which credential is currently logged in.
//
// The pointer is the only persisted state in the session core. Absence of
// the slot means "anonymous". [Store] keeps one slot per client ID in Redis,
// encoded as a compact versioned binary record so older readers can reject
// newer schemas explicitly instead of misparsing them.
//
// Store performs no credential lookups and no policy decisions; resolving a
// pointer back to a user is the engine's job.
package session
