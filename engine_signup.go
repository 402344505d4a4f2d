package sessionkit

import (
	"context"

	"github.com/conectaworking/sessionkit/internal/flows"
)

// SignUp registers a new credential record. Metadata left zero receives
// registration defaults: role free, plan active. A duplicate email
// returns ErrEmailAlreadyRegistered without touching the existing
// record or the caller's current session. On success the flow navigates
// to the email verification page but never starts a session: the
// pointer slot and the reactive user stay as they were, and the new
// user signs in explicitly through Login. The mailable verification
// token is requested separately through RequestEmailVerification.
func (e *Engine) SignUp(ctx context.Context, email, password string, meta *SignUpMetadata) (*ExtendedUser, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	req := flows.SignupRequest{
		Email:      email,
		Password:   password,
		Role:       string(RoleFree),
		PlanActive: true,
	}
	if meta != nil {
		if meta.Role != "" {
			req.Role = string(meta.Role)
		}
		req.FirstName = meta.FirstName
		req.LastName = meta.LastName
		req.Company = meta.Company
		req.Phone = meta.Phone
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.beginOperation()

	result, err := e.flows.Signup(ctx, req)
	if err != nil {
		e.endOperation(nil, true, err)
		return nil, err
	}

	user := e.toExtendedUser(ctx, result.User)
	e.endOperation(nil, true, nil)

	out := *user
	return &out, nil
}
