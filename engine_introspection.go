package sessionkit

import (
	"context"
	"fmt"
	"time"
)

// State returns the current lifecycle state.
func (e *Engine) State() SessionState {
	return e.Snapshot().State
}

// SetPlanActive flips the one mutable business flag on a credential
// record. When the change targets the signed-in user the live session
// snapshot is updated and observers are notified, so a deactivated plan
// takes effect without a re-login.
func (e *Engine) SetPlanActive(ctx context.Context, email string, active bool) error {
	if e == nil || e.repository == nil {
		return ErrEngineNotReady
	}

	if err := e.repository.SetPlanActive(ctx, email, active); err != nil {
		return err
	}

	e.stateMu.Lock()
	if e.user != nil && e.user.Email == email {
		e.user.PlanActive = active
		if e.user.Metadata != nil {
			e.user.Metadata.PlanActive = active
		}
	}
	snap := e.snapshotLocked()
	e.stateMu.Unlock()

	e.notify(snap)
	return nil
}

// GetLoginAttempts reports the current throttle counter for an email.
// Always zero when the login throttle is disabled.
func (e *Engine) GetLoginAttempts(ctx context.Context, email string) (int, error) {
	if e == nil || e.rateLimiter == nil {
		return 0, ErrEngineNotReady
	}
	return e.rateLimiter.GetLoginAttempts(ctx, email)
}

// Health pings the pointer store and reports reachability with the
// observed round trip.
func (e *Engine) Health(ctx context.Context) (bool, time.Duration) {
	if e == nil || e.pointerStore == nil {
		return false, 0
	}
	start := time.Now()
	_, err := e.pointerStore.Exists(ctx, clientIDFromContext(ctx))
	return err == nil, time.Since(start)
}

// SecurityReport summarizes the engine's active security posture.
func (e *Engine) SecurityReport() SecurityReport {
	cfg := e.config
	return SecurityReport{
		LoginThrottleActive:    cfg.Security.EnableLoginThrottle || cfg.Security.EnableIPThrottle,
		SignupThrottleActive:   cfg.Security.EnableSignupThrottle,
		VerificationActive:     cfg.Verification.Enabled,
		SignedVerificationLink: e.linkManager != nil,
		PointerTTL:             cfg.Session.PointerTTL,
		SlidingExpiration:      cfg.Session.SlidingExpiration,
		Argon2: PasswordConfigReport{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		},
	}
}

// String renders a short state description, useful in logs.
func (s SessionSnapshot) String() string {
	if s.User != nil {
		return fmt.Sprintf("session{%s %s loading=%t}", s.State, s.User.Email, s.Loading)
	}
	return fmt.Sprintf("session{%s loading=%t}", s.State, s.Loading)
}
