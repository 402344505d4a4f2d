package credstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	sessionkit "github.com/conectaworking/sessionkit"
)

// Memory is an in-memory CredentialRepository keyed by the email exactly
// as given; no case folding or trimming is applied. Safe for concurrent
// use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]sessionkit.CredentialRecord
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]sessionkit.CredentialRecord),
	}
}

// HashFunc produces a password hash for seeding. Typically the engine
// hasher's Hash method.
type HashFunc func(password string) (string, error)

// Seed installs pre-built records, replacing any existing entry with the
// same email.
func (m *Memory) Seed(records ...sessionkit.CredentialRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.records[rec.Email] = rec
	}
}

// SeedDefaults installs the two development fixture accounts: an active
// admin and a pro account with an inactive plan, both with password
// "12345678".
func (m *Memory) SeedDefaults(hash HashFunc) error {
	passwordHash, err := hash("12345678")
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}

	now := time.Now()
	m.Seed(
		sessionkit.CredentialRecord{
			ID:           uuid.NewString(),
			Email:        "admin@conectaworking.dev",
			PasswordHash: passwordHash,
			Metadata: sessionkit.UserMetadata{
				Role:       sessionkit.RoleAdmin,
				PlanActive: true,
				FirstName:  "Admin",
				CreatedAt:  now,
			},
		},
		sessionkit.CredentialRecord{
			ID:           uuid.NewString(),
			Email:        "inativo@conectaworking.dev",
			PasswordHash: passwordHash,
			Metadata: sessionkit.UserMetadata{
				Role:       sessionkit.RolePro,
				PlanActive: false,
				FirstName:  "Inativo",
				CreatedAt:  now,
			},
		},
	)
	return nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*sessionkit.CredentialRecord, error) {
	m.mu.RLock()
	rec, ok := m.records[email]
	m.mu.RUnlock()

	if !ok {
		return nil, sessionkit.ErrCredentialNotFound
	}
	out := rec
	return &out, nil
}

func (m *Memory) Create(_ context.Context, input sessionkit.RegisterInput) (sessionkit.CredentialRecord, error) {
	key := input.Email

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[key]; exists {
		return sessionkit.CredentialRecord{}, sessionkit.ErrEmailAlreadyRegistered
	}

	rec := sessionkit.CredentialRecord{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Metadata:     input.Metadata,
	}
	if rec.Metadata.CreatedAt.IsZero() {
		rec.Metadata.CreatedAt = time.Now()
	}
	m.records[key] = rec
	return rec, nil
}

func (m *Memory) SetPlanActive(_ context.Context, email string, active bool) error {
	key := email

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return sessionkit.ErrCredentialNotFound
	}
	rec.Metadata.PlanActive = active
	m.records[key] = rec
	return nil
}

// UpdatePasswordHash replaces the stored hash, used for transparent
// hash upgrades on login.
func (m *Memory) UpdatePasswordHash(_ context.Context, email, hash string) error {
	key := email

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return sessionkit.ErrCredentialNotFound
	}
	rec.PasswordHash = hash
	m.records[key] = rec
	return nil
}

// Len reports the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
