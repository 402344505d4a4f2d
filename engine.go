package sessionkit

import (
	"context"
	"sync"

	"github.com/conectaworking/sessionkit/internal/audit"
	"github.com/conectaworking/sessionkit/internal/flows"
	"github.com/conectaworking/sessionkit/internal/rate"
	"github.com/conectaworking/sessionkit/internal/stores"
	"github.com/conectaworking/sessionkit/password"
	"github.com/conectaworking/sessionkit/routing"
	"github.com/conectaworking/sessionkit/session"
	"github.com/conectaworking/sessionkit/token"
)

// Engine is the session core. It owns the durable session pointer, the
// credential repository boundary, the redirect policy, and one reactive
// session snapshot that observers subscribe to.
//
// Login, SignUp, and Logout are serialized against each other; reads
// (Snapshot, Authorize) never block behind them.
type Engine struct {
	config Config

	policy            *routing.Policy
	pointerStore      *session.Store
	repository        CredentialRepository
	navigator         Navigator
	hasher            *password.Hasher
	rateLimiter       *rate.Limiter
	verificationStore *stores.VerificationStore
	linkManager       *token.Manager
	audit             *audit.Dispatcher
	metrics           *Metrics
	flows             flows.Service

	// opMu serializes the mutating session operations so two concurrent
	// logins cannot interleave pointer writes and state updates.
	opMu sync.Mutex

	stateMu     sync.RWMutex
	initialized bool
	loading     bool
	user        *ExtendedUser
	lastErr     string

	subMu       sync.Mutex
	subscribers map[int]chan SessionSnapshot
	nextSubID   int
	closed      bool
}

// Initialize resolves the durable pointer into the initial session
// state. Observers see loading=true until this returns. Safe to call
// once; later calls re-resolve the pointer in place.
func (e *Engine) Initialize(ctx context.Context) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	result, err := e.flows.ResolveSession(ctx)

	e.stateMu.Lock()
	e.initialized = true
	e.loading = false
	if err != nil {
		e.user = nil
		e.lastErr = err.Error()
	} else if result.Found {
		user := result.User
		e.user = e.toExtendedUser(ctx, user)
		e.lastErr = ""
	} else {
		e.user = nil
		e.lastErr = ""
	}
	snap := e.snapshotLocked()
	e.stateMu.Unlock()

	e.notify(snap)
	return err
}

// toExtendedUser re-reads the full record so the session carries the
// complete metadata, not just the flow-local projection.
func (e *Engine) toExtendedUser(ctx context.Context, user flows.UserRecord) *ExtendedUser {
	if rec, err := e.repository.FindByEmail(ctx, user.Email); err == nil {
		out := rec.User()
		return &out
	}
	meta := &UserMetadata{
		Role:       Role(user.Role),
		PlanActive: user.PlanActive,
	}
	return &ExtendedUser{
		ID:         user.UserID,
		Email:      user.Email,
		Metadata:   meta,
		Role:       Role(user.Role),
		PlanActive: user.PlanActive,
	}
}

// Snapshot returns one consistent view of the session state.
func (e *Engine) Snapshot() SessionSnapshot {
	if e == nil {
		return SessionSnapshot{State: StateLoading, Loading: true}
	}
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		Loading: e.loading || !e.initialized,
		Err:     e.lastErr,
	}
	switch {
	case !e.initialized:
		snap.State = StateLoading
	case e.user != nil:
		snap.State = StateAuthenticated
		user := *e.user
		snap.User = &user
	default:
		snap.State = StateAnonymous
	}
	return snap
}

// CurrentUser returns the authenticated user, or nil.
func (e *Engine) CurrentUser() *ExtendedUser {
	return e.Snapshot().User
}

// Subscribe registers an observer for session snapshots. Every state
// transition is pushed to the returned channel; slow consumers miss
// intermediate snapshots rather than blocking session operations. The
// cancel func must be called when done.
func (e *Engine) Subscribe() (<-chan SessionSnapshot, func()) {
	ch := make(chan SessionSnapshot, 8)

	e.subMu.Lock()
	if e.closed {
		e.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if e.subscribers == nil {
		e.subscribers = make(map[int]chan SessionSnapshot)
	}
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		if sub, ok := e.subscribers[id]; ok {
			delete(e.subscribers, id)
			close(sub)
		}
		e.subMu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) notify(snap SessionSnapshot) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			// drop; the subscriber will catch up on the next transition
		}
	}
}

// beginOperation flips the loading flag and clears the previous error
// before a session operation runs.
func (e *Engine) beginOperation() {
	e.stateMu.Lock()
	e.loading = true
	e.lastErr = ""
	snap := e.snapshotLocked()
	e.stateMu.Unlock()
	e.notify(snap)
}

// endOperation records the outcome. keepUser leaves the current session
// in place regardless of outcome: failed operations preserve a live
// session, and operations that never start one (SignUp) pass it on
// success too.
func (e *Engine) endOperation(user *ExtendedUser, keepUser bool, err error) {
	e.stateMu.Lock()
	e.loading = false
	if err != nil {
		e.lastErr = err.Error()
		if !keepUser {
			e.user = nil
		}
	} else {
		e.lastErr = ""
		if !keepUser {
			e.user = user
		}
	}
	snap := e.snapshotLocked()
	e.stateMu.Unlock()
	e.notify(snap)
}

// Navigate pushes a destination to the configured navigator.
func (e *Engine) navigate(ctx context.Context, dest routing.Destination) {
	if e.navigator != nil {
		e.navigator.Navigate(ctx, dest)
	}
}

// Policy exposes the frozen redirect policy.
func (e *Engine) Policy() *routing.Policy {
	return e.policy
}

// Metrics returns a snapshot of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close shuts down the audit dispatcher and closes all subscriber
// channels. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.subMu.Lock()
	if !e.closed {
		e.closed = true
		for id, ch := range e.subscribers {
			delete(e.subscribers, id)
			close(ch)
		}
	}
	e.subMu.Unlock()

	e.audit.Close()
}
