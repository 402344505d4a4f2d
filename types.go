package sessionkit

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/conectaworking/sessionkit/internal/audit"
	"github.com/conectaworking/sessionkit/routing"
)

// Role is the enumerated tag on a user that determines which dashboard the
// redirect policy routes them to.
type Role string

const (
	RoleFree      Role = "free"
	RolePro       Role = "pro"
	RolePremium   Role = "premium"
	RoleVIP       Role = "vip"
	RoleAdmin     Role = "admin"
	RoleShopOwner Role = "shop_owner"
	RoleCompany   Role = "company"
)

// Known reports whether r is one of the enumerated roles. The redirect
// policy stays total either way; unknown roles route to login.
func (r Role) Known() bool {
	switch r {
	case RoleFree, RolePro, RolePremium, RoleVIP, RoleAdmin, RoleShopOwner, RoleCompany:
		return true
	}
	return false
}

// UserMetadata carries the identity facts owned by a credential record.
// Everything is immutable after registration except PlanActive, the one
// mutable business flag.
type UserMetadata struct {
	Role       Role
	PlanActive bool
	FirstName  string
	LastName   string
	Company    string
	Phone      string
	CreatedAt  time.Time
}

// ExtendedUser is the session-facing projection of a credential record,
// computed at session-resolution time and never persisted independently.
// Role and PlanActive are flattened out of the metadata at this boundary.
type ExtendedUser struct {
	ID         string
	Email      string
	Metadata   *UserMetadata
	Role       Role
	PlanActive bool
}

// CredentialRecord is the stored credential: unique email key, password
// hash, and owned metadata. Records are created on signup, read on login,
// and never deleted by this core.
type CredentialRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Metadata     UserMetadata
}

// User returns the session-facing projection of the record.
func (r *CredentialRecord) User() ExtendedUser {
	meta := r.Metadata
	return ExtendedUser{
		ID:         r.ID,
		Email:      r.Email,
		Metadata:   &meta,
		Role:       meta.Role,
		PlanActive: meta.PlanActive,
	}
}

// RegisterInput is the input for [CredentialRepository.Create]. The
// password is already hashed by the engine; repositories never see
// plaintext. Metadata arrives fully defaulted.
type RegisterInput struct {
	Email        string
	PasswordHash string
	Metadata     UserMetadata
}

// SignUpMetadata is the caller-supplied partial metadata for
// [Engine.SignUp]. Omitted fields receive registration defaults: role
// free, plan active, created-at now.
type SignUpMetadata struct {
	Role      Role
	FirstName string
	LastName  string
	Company   string
	Phone     string
}

// CredentialRepository is the interface hosts implement to integrate
// sessionkit with their identity backend. The engine depends only on this
// interface; credstore ships an in-memory fixture and a Redis adapter.
//
// Implementations must return [ErrCredentialNotFound] for missing emails,
// [ErrEmailAlreadyRegistered] for duplicate Create calls (without mutating
// the existing record), and wrap backend failures in
// [ErrStoreUnavailable].
type CredentialRepository interface {
	FindByEmail(ctx context.Context, email string) (*CredentialRecord, error)
	Create(ctx context.Context, input RegisterInput) (CredentialRecord, error)
	SetPlanActive(ctx context.Context, email string, active bool) error
}

// Navigator is the single outbound navigation capability. The engine only
// ever calls it with destinations from the routing policy or the fixed
// auth-flow paths.
type Navigator interface {
	Navigate(ctx context.Context, dest routing.Destination)
}

// NoOpNavigator discards all navigation.
type NoOpNavigator struct{}

func (NoOpNavigator) Navigate(context.Context, routing.Destination) {}

// NavigatorFunc adapts a function to the [Navigator] interface.
type NavigatorFunc func(ctx context.Context, dest routing.Destination)

func (f NavigatorFunc) Navigate(ctx context.Context, dest routing.Destination) {
	f(ctx, dest)
}

// ChannelNavigator buffers destinations on a channel for the host router
// to drain. Navigation is dropped when the buffer is full rather than
// blocking a session operation.
type ChannelNavigator struct {
	destinations chan routing.Destination
}

func NewChannelNavigator(buffer int) *ChannelNavigator {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNavigator{
		destinations: make(chan routing.Destination, buffer),
	}
}

func (n *ChannelNavigator) Navigate(_ context.Context, dest routing.Destination) {
	select {
	case n.destinations <- dest:
	default:
	}
}

func (n *ChannelNavigator) Destinations() <-chan routing.Destination {
	return n.destinations
}

// SessionState is the engine's lifecycle state. Loading is entered exactly
// once, while Initialize resolves the durable pointer; it is never
// re-entered except by building a new engine.
type SessionState uint8

const (
	StateLoading SessionState = iota
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionSnapshot is one consistent view of the reactive session state.
// Loading covers both the initial resolution and in-flight operations;
// Err holds the human-readable message of the last failure, cleared on the
// next operation.
type SessionSnapshot struct {
	State   SessionState
	User    *ExtendedUser
	Loading bool
	Err     string
}

// GuardResult is returned by [Engine.Authorize] for the calling page to
// render conditionally.
type GuardResult struct {
	User    *ExtendedUser
	Loading bool
}

// SecurityReport is a read-only snapshot of the engine's security posture,
// returned by [Engine.SecurityReport].
type SecurityReport struct {
	LoginThrottleActive    bool
	SignupThrottleActive   bool
	VerificationActive     bool
	SignedVerificationLink bool
	PointerTTL             time.Duration
	SlidingExpiration      bool
	Argon2                 PasswordConfigReport
}

// PasswordConfigReport contains the Argon2 parameters active in the engine.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// io.Writer, one per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] over w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
