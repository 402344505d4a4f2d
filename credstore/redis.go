package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	sessionkit "github.com/conectaworking/sessionkit"
)

const (
	defaultRedisPrefix = "cwc"
	txRetries          = 4
)

// Redis is a CredentialRepository backed by Redis. Records are stored as
// versioned binary blobs keyed by the email exactly as given; creation
// and plan updates run under optimistic WATCH transactions so concurrent
// writers cannot clobber each other.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Redis) key(email string) string {
	return s.prefix + ":cred:" + email
}

func (s *Redis) FindByEmail(ctx context.Context, email string) (*sessionkit.CredentialRecord, error) {
	data, err := s.redis.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sessionkit.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("%w: %v", sessionkit.ErrStoreUnavailable, err)
	}

	rec, err := decodeCredentialRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sessionkit.ErrStoreUnavailable, err)
	}
	return rec, nil
}

func (s *Redis) Create(ctx context.Context, input sessionkit.RegisterInput) (sessionkit.CredentialRecord, error) {
	rec := sessionkit.CredentialRecord{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Metadata:     input.Metadata,
	}
	if rec.Metadata.CreatedAt.IsZero() {
		rec.Metadata.CreatedAt = time.Now()
	}

	data, err := encodeCredentialRecord(&rec)
	if err != nil {
		return sessionkit.CredentialRecord{}, fmt.Errorf("%w: %v", sessionkit.ErrStoreUnavailable, err)
	}

	key := s.key(input.Email)
	for i := 0; i < txRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if exists > 0 {
				return sessionkit.ErrEmailAlreadyRegistered
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			return err
		}, key)

		if err == nil {
			return rec, nil
		}
		if errors.Is(err, sessionkit.ErrEmailAlreadyRegistered) {
			return sessionkit.CredentialRecord{}, sessionkit.ErrEmailAlreadyRegistered
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return sessionkit.CredentialRecord{}, fmt.Errorf("%w: %v", sessionkit.ErrStoreUnavailable, err)
	}
	return sessionkit.CredentialRecord{}, fmt.Errorf("%w: create transaction retries exhausted", sessionkit.ErrStoreUnavailable)
}

func (s *Redis) SetPlanActive(ctx context.Context, email string, active bool) error {
	return s.update(ctx, email, func(rec *sessionkit.CredentialRecord) {
		rec.Metadata.PlanActive = active
	})
}

// UpdatePasswordHash replaces the stored hash, used for transparent
// hash upgrades on login.
func (s *Redis) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	return s.update(ctx, email, func(rec *sessionkit.CredentialRecord) {
		rec.PasswordHash = hash
	})
}

func (s *Redis) update(ctx context.Context, email string, mutate func(*sessionkit.CredentialRecord)) error {
	key := s.key(email)

	for i := 0; i < txRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return sessionkit.ErrCredentialNotFound
				}
				return err
			}

			rec, err := decodeCredentialRecord(data)
			if err != nil {
				return err
			}
			mutate(rec)

			updated, err := encodeCredentialRecord(rec)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, redis.KeepTTL)
				return nil
			})
			return err
		}, key)

		if err == nil {
			return nil
		}
		if errors.Is(err, sessionkit.ErrCredentialNotFound) {
			return sessionkit.ErrCredentialNotFound
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("%w: %v", sessionkit.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: update transaction retries exhausted", sessionkit.ErrStoreUnavailable)
}
