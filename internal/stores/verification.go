package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	verificationRecordVersionV1 = 1
)

var (
	ErrVerificationNotFound         = errors.New("verification challenge not found")
	ErrVerificationSecretMismatch   = errors.New("verification secret mismatch")
	ErrVerificationAttemptsExceeded = errors.New("verification attempts exceeded")
	ErrVerificationRedisUnavailable = errors.New("verification redis unavailable")
)

// VerificationRecord is one pending email-verification challenge.
type VerificationRecord struct {
	Email      string
	SecretHash [32]byte
	ExpiresAt  int64
	Attempts   uint16
}

// VerificationStore keeps pending challenges in Redis, keyed by challenge
// ID, expiring with their TTL.
type VerificationStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewVerificationStore(redisClient redis.UniversalClient, prefix string) *VerificationStore {
	if prefix == "" {
		prefix = "cwv"
	}
	return &VerificationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *VerificationStore) key(challengeID string) string {
	return s.prefix + ":" + challengeID
}

func (s *VerificationStore) Save(
	ctx context.Context,
	challengeID string,
	record *VerificationRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeVerificationRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(challengeID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationRedisUnavailable, err)
	}

	return nil
}

// Consume atomically resolves a challenge. A matching secret deletes the
// record and returns it; a mismatch increments the attempt counter in
// place, deleting the record once maxAttempts is reached. Expired records
// are deleted on sight.
func (s *VerificationStore) Consume(
	ctx context.Context,
	challengeID string,
	providedHash [32]byte,
	maxAttempts int,
) (*VerificationRecord, error) {
	const maxRetries = 4
	key := s.key(challengeID)

	for i := 0; i < maxRetries; i++ {
		var matched *VerificationRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeVerificationRecord(data)
			if err != nil {
				return err
			}

			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrVerificationNotFound
			}

			if subtle.ConstantTimeCompare(record.SecretHash[:], providedHash[:]) != 1 {
				record.Attempts++
				if int(record.Attempts) >= maxAttempts {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return ErrVerificationAttemptsExceeded
				}

				encoded, encErr := encodeVerificationRecord(record)
				if encErr != nil {
					return encErr
				}

				ttl, ttlErr := tx.TTL(ctx, key).Result()
				if ttlErr != nil {
					return ttlErr
				}
				if ttl < 0 {
					ttl = time.Until(time.Unix(record.ExpiresAt, 0))
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, encoded, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrVerificationSecretMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}

			matched = record
			return nil
		}, key)

		switch {
		case err == nil:
			return matched, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil):
			return nil, ErrVerificationNotFound
		case errors.Is(err, ErrVerificationNotFound),
			errors.Is(err, ErrVerificationSecretMismatch),
			errors.Is(err, ErrVerificationAttemptsExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrVerificationRedisUnavailable, err)
		}
	}

	return nil, fmt.Errorf("%w: transaction retries exhausted", ErrVerificationRedisUnavailable)
}

func encodeVerificationRecord(record *VerificationRecord) ([]byte, error) {
	if record == nil || record.Email == "" {
		return nil, errors.New("invalid verification record")
	}
	if len(record.Email) > 255 {
		return nil, errors.New("verification email too long")
	}

	buf := make([]byte, 0, 2+len(record.Email)+32+8+2)
	buf = append(buf, verificationRecordVersionV1)
	buf = append(buf, byte(len(record.Email)))
	buf = append(buf, record.Email...)
	buf = append(buf, record.SecretHash[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(record.ExpiresAt))
	buf = binary.BigEndian.AppendUint16(buf, record.Attempts)

	return buf, nil
}

func decodeVerificationRecord(data []byte) (*VerificationRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != verificationRecordVersionV1 {
		return nil, errors.New("invalid verification record version")
	}

	emailLen, err := reader.ReadByte()
	if err != nil || emailLen == 0 {
		return nil, errors.New("invalid verification record email length")
	}

	email := make([]byte, emailLen)
	if _, err := io.ReadFull(reader, email); err != nil {
		return nil, errors.New("truncated verification record email")
	}

	record := &VerificationRecord{Email: string(email)}
	if _, err := io.ReadFull(reader, record.SecretHash[:]); err != nil {
		return nil, errors.New("truncated verification record hash")
	}

	var tail [10]byte
	if _, err := io.ReadFull(reader, tail[:]); err != nil {
		return nil, errors.New("truncated verification record tail")
	}
	record.ExpiresAt = int64(binary.BigEndian.Uint64(tail[:8]))
	record.Attempts = binary.BigEndian.Uint16(tail[8:])

	if reader.Len() != 0 {
		return nil, errors.New("verification record trailing bytes")
	}

	return record, nil
}
