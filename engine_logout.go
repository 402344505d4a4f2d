package sessionkit

import (
	"context"
)

// Logout clears the durable session pointer, drops the in-memory
// session, and navigates to the login page, strictly in that order. If
// the pointer clear fails the session is retained and
// ErrPersistenceFailure is returned, so the caller is never left on the
// login page while the pointer still resolves. Logging out while
// anonymous is a no-op that still lands on login.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	var userID, email string
	e.stateMu.RLock()
	if e.user != nil {
		userID = e.user.ID
		email = e.user.Email
	}
	e.stateMu.RUnlock()

	e.beginOperation()

	if _, err := e.flows.Logout(ctx, userID, email); err != nil {
		e.endOperation(nil, true, err)
		return err
	}

	e.endOperation(nil, false, nil)
	return nil
}
