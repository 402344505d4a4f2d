// Package flows contains the session flow implementations behind the
// public engine methods. Each flow is a pure function over an explicit
// dependency struct of closures, so the root package can inject its
// stores, hasher, policy, metrics, and sentinel errors without this
// package importing it.
package flows
