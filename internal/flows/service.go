package flows

import (
	"context"

	"github.com/conectaworking/sessionkit/routing"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Resolve.GetPointer != nil
}

func (s Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	return RunSignup(ctx, req, s.deps.Signup)
}

func (s Service) Logout(ctx context.Context, userID, email string) (routing.Destination, error) {
	return RunLogout(ctx, userID, email, s.deps.Logout)
}

func (s Service) ResolveSession(ctx context.Context) (ResolveResult, error) {
	return RunResolveSession(ctx, s.deps.Resolve)
}

func (s Service) RequestVerification(ctx context.Context, email string) (string, error) {
	return RunRequestVerification(ctx, email, s.deps.Verification)
}

func (s Service) ConfirmVerification(ctx context.Context, token string) (string, error) {
	return RunConfirmVerification(ctx, token, s.deps.Verification)
}
