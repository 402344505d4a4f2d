package sessionkit

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password. The message deliberately does not reveal which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailAlreadyRegistered is returned by SignUp when the email key
	// already exists. The existing record is never mutated.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrPersistenceFailure wraps read/write errors on the durable session
	// pointer slot or the credential store backend.
	ErrPersistenceFailure = errors.New("session persistence failure")
	// ErrUnknownFailure is the catch-all for failures outside the named
	// taxonomy.
	ErrUnknownFailure = errors.New("unknown failure")

	// ErrCredentialNotFound is the repository-level miss. The engine folds
	// it into ErrInvalidCredentials at the login boundary so callers cannot
	// distinguish unknown emails from wrong passwords.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrStoreUnavailable is returned by repository implementations when
	// their backend cannot be reached.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrLoginRateLimited is returned when the login throttle budget for an
	// email or IP is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrSignupRateLimited is returned when the signup throttle budget for
	// an IP is exhausted.
	ErrSignupRateLimited = errors.New("signup rate limited")

	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrVerificationDisabled is returned when email verification is not
	// enabled in the configuration.
	ErrVerificationDisabled = errors.New("email verification disabled")
	// ErrVerificationInvalid is returned for an unknown, expired, or
	// mismatched verification challenge.
	ErrVerificationInvalid = errors.New("email verification challenge invalid")
	// ErrVerificationAttempts is returned once a challenge's attempt budget
	// is exhausted.
	ErrVerificationAttempts = errors.New("email verification attempts exceeded")
	// ErrVerificationUnavailable is returned when the challenge backend
	// cannot be reached.
	ErrVerificationUnavailable = errors.New("email verification backend unavailable")
)
