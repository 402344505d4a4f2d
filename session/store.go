package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the backing Redis cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrPointerNotFound is returned by Get when no pointer exists for the
// client, i.e. the client is anonymous.
var ErrPointerNotFound = errors.New("session pointer not found")

const minPointerTTL = time.Second

// Store persists one session pointer per client ID. A zero TTL keeps the
// pointer until it is explicitly cleared; with a positive TTL and sliding
// expiration enabled, reads push the expiry forward.
type Store struct {
	redis   redis.UniversalClient
	prefix  string
	ttl     time.Duration
	sliding bool
}

// NewStore creates a pointer store. prefix defaults to "cw" when empty.
func NewStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration, sliding bool) *Store {
	if prefix == "" {
		prefix = "cw"
	}
	if ttl > 0 && ttl < minPointerTTL {
		ttl = minPointerTTL
	}
	return &Store{
		redis:   redisClient,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

func (s *Store) key(clientID string) string {
	return s.prefix + ":ptr:" + normalizeClientID(clientID)
}

func normalizeClientID(clientID string) string {
	if clientID == "" {
		return "0"
	}
	return clientID
}

// Set writes the pointer for the client, replacing any previous session.
// Last write wins; there is no transactional guarantee across clients.
func (s *Store) Set(ctx context.Context, clientID string, ptr *Pointer) error {
	encoded, err := encodePointer(ptr)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(clientID), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get reads the pointer for the client. Returns [ErrPointerNotFound] for an
// anonymous client and [ErrPointerCorrupt] for an undecodable record; the
// record is left in place for the caller to clear.
func (s *Store) Get(ctx context.Context, clientID string) (*Pointer, error) {
	key := s.key(clientID)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPointerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	ptr, err := decodePointer(data)
	if err != nil {
		return nil, err
	}

	if s.sliding && s.ttl > 0 {
		if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return ptr, nil
}

// Clear removes the pointer for the client. Clearing an absent pointer is a
// no-op: logout of an anonymous client must succeed.
func (s *Store) Clear(ctx context.Context, clientID string) error {
	if err := s.redis.Del(ctx, s.key(clientID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Touch updates the pointer's last-seen timestamp, preserving creation time.
// Missing pointers are not recreated.
func (s *Store) Touch(ctx context.Context, clientID string, now time.Time) error {
	ptr, err := s.Get(ctx, clientID)
	if err != nil {
		return err
	}

	ptr.LastSeenAt = now.Unix()
	return s.Set(ctx, clientID, ptr)
}

// Exists reports whether a pointer is present for the client.
func (s *Store) Exists(ctx context.Context, clientID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(clientID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}
