package session

import (
	"encoding/binary"
	"errors"
)

// Schema versions for the encoded pointer record. Version 1 carried only
// the email and creation time; version 2 added the last-seen timestamp.
// Encoding always writes the current version; decoding accepts both.
const (
	pointerVersionV1 = 1
	pointerVersionV2 = 2

	pointerVersionCurrent = pointerVersionV2
)

const maxEmailLength = 255

// ErrPointerCorrupt is returned when a stored pointer blob cannot be
// decoded. Callers treat a corrupt pointer like a missing one.
var ErrPointerCorrupt = errors.New("session pointer corrupt")

// ErrEmailTooLong is returned when the email exceeds the one-byte length
// prefix of the record format.
var ErrEmailTooLong = errors.New("session pointer email too long")

func encodePointer(ptr *Pointer) ([]byte, error) {
	if ptr == nil || ptr.Email == "" {
		return nil, ErrPointerCorrupt
	}
	if len(ptr.Email) > maxEmailLength {
		return nil, ErrEmailTooLong
	}

	buf := make([]byte, 0, 2+len(ptr.Email)+16)
	buf = append(buf, pointerVersionCurrent)
	buf = append(buf, byte(len(ptr.Email)))
	buf = append(buf, ptr.Email...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(ptr.CreatedAt))
	buf = binary.BigEndian.AppendUint64(buf, uint64(ptr.LastSeenAt))

	return buf, nil
}

func decodePointer(data []byte) (*Pointer, error) {
	if len(data) < 2 {
		return nil, ErrPointerCorrupt
	}

	version := data[0]
	if version < pointerVersionV1 || version > pointerVersionCurrent {
		return nil, ErrPointerCorrupt
	}

	emailLen := int(data[1])
	if emailLen == 0 {
		return nil, ErrPointerCorrupt
	}

	idx := 2
	if len(data) < idx+emailLen+8 {
		return nil, ErrPointerCorrupt
	}
	email := string(data[idx : idx+emailLen])
	idx += emailLen

	ptr := &Pointer{Email: email}
	ptr.CreatedAt = int64(binary.BigEndian.Uint64(data[idx : idx+8]))
	idx += 8

	if version >= pointerVersionV2 {
		if len(data) < idx+8 {
			return nil, ErrPointerCorrupt
		}
		ptr.LastSeenAt = int64(binary.BigEndian.Uint64(data[idx : idx+8]))
		idx += 8
	}

	if idx != len(data) {
		return nil, ErrPointerCorrupt
	}

	return ptr, nil
}
