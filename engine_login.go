package sessionkit

import (
	"context"
)

// Login authenticates email and password, persists the durable session
// pointer, updates the reactive session state, and navigates to the
// destination the redirect policy resolves for the user.
//
// Wrong password and unknown email are indistinguishable to the caller;
// both return ErrInvalidCredentials and leave any current session
// untouched. Repeated failures keep returning ErrInvalidCredentials
// unless a login throttle is enabled.
func (e *Engine) Login(ctx context.Context, email, password string) (*ExtendedUser, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.beginOperation()

	result, err := e.flows.Login(ctx, email, password)
	if err != nil {
		e.endOperation(nil, true, err)
		return nil, err
	}

	user := e.toExtendedUser(ctx, result.User)
	e.endOperation(user, false, nil)

	out := *user
	return &out, nil
}
