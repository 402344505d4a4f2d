// Package credstore provides CredentialRepository implementations: an
// in-memory store for tests and development fixtures, and a Redis-backed
// store for deployments without an external identity backend.
package credstore
