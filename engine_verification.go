package sessionkit

import (
	"context"
)

// RequestEmailVerification issues a single-use verification challenge
// for the email and returns the opaque token to mail to the user. With
// a link signing method configured the token comes back wrapped in a
// signed link token instead. Returns ErrVerificationDisabled when the
// feature is off.
func (e *Engine) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	if e == nil || !e.flows.Initialized() {
		return "", ErrEngineNotReady
	}
	return e.flows.RequestVerification(ctx, email)
}

// ConfirmEmailVerification consumes a verification token and returns
// the verified email. Tokens are single use; a wrong secret burns one
// attempt and the challenge is destroyed once the attempt budget is
// spent. Signed link tokens are unwrapped and checked against the
// challenge before consumption.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, tokenStr string) (string, error) {
	if e == nil || !e.flows.Initialized() {
		return "", ErrEngineNotReady
	}

	if e.linkManager != nil {
		claims, err := e.linkManager.ParseLink(tokenStr)
		if err != nil {
			e.metrics.Inc(MetricVerificationFailure)
			return "", ErrVerificationInvalid
		}
		email, err := e.flows.ConfirmVerification(ctx, claims.Challenge)
		if err != nil {
			return "", err
		}
		if email != claims.Email {
			e.metrics.Inc(MetricVerificationFailure)
			return "", ErrVerificationInvalid
		}
		return email, nil
	}

	return e.flows.ConfirmVerification(ctx, tokenStr)
}
