package test

import (
	"context"
	"net/http"
	"testing"

	sessionkit "github.com/conectaworking/sessionkit"
	"github.com/conectaworking/sessionkit/middleware"
	"github.com/conectaworking/sessionkit/routing"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = sessionkit.New

	var _ *sessionkit.Engine
	var _ sessionkit.Config
	var _ sessionkit.SessionSnapshot
	var _ sessionkit.ExtendedUser
	var _ sessionkit.GuardResult
	var _ sessionkit.RegisterInput
	var _ sessionkit.SignUpMetadata
	var _ sessionkit.CredentialRepository
	var _ sessionkit.Navigator
	var _ sessionkit.AuditSink

	var _ error = sessionkit.ErrInvalidCredentials
	var _ error = sessionkit.ErrEmailAlreadyRegistered
	var _ error = sessionkit.ErrPersistenceFailure
	var _ error = sessionkit.ErrUnknownFailure
	var _ error = sessionkit.ErrLoginRateLimited
	var _ error = sessionkit.ErrEngineNotReady

	var _ func(*sessionkit.Engine) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*sessionkit.Engine, ...sessionkit.Role) func(http.Handler) http.Handler = middleware.RequireRoles

	var _ func(*sessionkit.Engine, context.Context, string, string) (*sessionkit.ExtendedUser, error) = (*sessionkit.Engine).Login
	var _ func(*sessionkit.Engine, context.Context, string, string, *sessionkit.SignUpMetadata) (*sessionkit.ExtendedUser, error) = (*sessionkit.Engine).SignUp
	var _ func(*sessionkit.Engine, context.Context) error = (*sessionkit.Engine).Logout
	var _ func(*sessionkit.Engine, context.Context, string, ...sessionkit.Role) sessionkit.GuardResult = (*sessionkit.Engine).Authorize
	var _ func(*sessionkit.Engine, context.Context, string) = (*sessionkit.Engine).ReconcileLocation
	var _ func(*sessionkit.Engine, sessionkit.Role, bool) routing.Destination = (*sessionkit.Engine).RedirectFor
	var _ func(*sessionkit.Engine) (<-chan sessionkit.SessionSnapshot, func()) = (*sessionkit.Engine).Subscribe
}

// Zero-value and nil engines must reject operations instead of panicking.
func TestUninitializedEngineRejectsOperations(t *testing.T) {
	ctx := context.Background()
	var engine sessionkit.Engine

	if _, err := engine.Login(ctx, "a@b.c", "pw"); err != sessionkit.ErrEngineNotReady {
		t.Fatalf("Login: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.SignUp(ctx, "a@b.c", "pw", nil); err != sessionkit.ErrEngineNotReady {
		t.Fatalf("SignUp: expected ErrEngineNotReady, got %v", err)
	}
	if err := engine.Logout(ctx); err != sessionkit.ErrEngineNotReady {
		t.Fatalf("Logout: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.RequestEmailVerification(ctx, "a@b.c"); err != sessionkit.ErrEngineNotReady {
		t.Fatalf("RequestEmailVerification: expected ErrEngineNotReady, got %v", err)
	}
}
