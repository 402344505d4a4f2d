// Package rate enforces attempt budgets for login and signup using Redis
// counters with cooldown TTLs. Counters are advisory hardening on top of
// the attempt-once session operations; all throttles are disabled by
// default and configured by the host.
package rate
