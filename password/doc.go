// Package password hashes and verifies credentials with Argon2id.
//
// Hashes are emitted in PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash) so stored credentials remain
// verifiable after parameter upgrades: Verify always recomputes with the
// parameters embedded in the stored hash, and NeedsUpgrade tells the caller
// when a credential should be rehashed on next successful login.
//
// Plaintext passwords are never stored or compared; comparison is
// constant-time over the derived keys.
package password
