package credstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	sessionkit "github.com/conectaworking/sessionkit"
)

const (
	recordVersionV1 = 1

	maxFieldLength = 1024
)

var errRecordCorrupt = errors.New("credential record corrupt")

// encodeCredentialRecord serializes a record as a versioned binary blob:
// version byte, then length-prefixed strings, the plan flag, and the
// creation time as a big-endian unix timestamp.
func encodeCredentialRecord(rec *sessionkit.CredentialRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(recordVersionV1)

	fields := []string{
		rec.ID,
		rec.Email,
		rec.PasswordHash,
		string(rec.Metadata.Role),
		rec.Metadata.FirstName,
		rec.Metadata.LastName,
		rec.Metadata.Company,
		rec.Metadata.Phone,
	}
	for _, f := range fields {
		if len(f) > maxFieldLength {
			return nil, errRecordCorrupt
		}
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(f)))
		buf.Write(lenBuf[:])
		buf.WriteString(f)
	}

	if rec.Metadata.PlanActive {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(rec.Metadata.CreatedAt.Unix()))
	buf.Write(ts[:])

	return buf.Bytes(), nil
}

func decodeCredentialRecord(data []byte) (*sessionkit.CredentialRecord, error) {
	if len(data) < 1 {
		return nil, errRecordCorrupt
	}
	if data[0] != recordVersionV1 {
		return nil, errRecordCorrupt
	}
	offset := 1

	readString := func() (string, bool) {
		if offset+2 > len(data) {
			return "", false
		}
		n := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if n > maxFieldLength || offset+n > len(data) {
			return "", false
		}
		s := string(data[offset : offset+n])
		offset += n
		return s, true
	}

	var fields [8]string
	for i := range fields {
		s, ok := readString()
		if !ok {
			return nil, errRecordCorrupt
		}
		fields[i] = s
	}

	if offset+1+8 != len(data) {
		return nil, errRecordCorrupt
	}
	planByte := data[offset]
	if planByte > 1 {
		return nil, errRecordCorrupt
	}
	offset++
	createdAt := int64(binary.BigEndian.Uint64(data[offset : offset+8]))

	return &sessionkit.CredentialRecord{
		ID:           fields[0],
		Email:        fields[1],
		PasswordHash: fields[2],
		Metadata: sessionkit.UserMetadata{
			Role:       sessionkit.Role(fields[3]),
			PlanActive: planByte == 1,
			FirstName:  fields[4],
			LastName:   fields[5],
			Company:    fields[6],
			Phone:      fields[7],
			CreatedAt:  time.Unix(createdAt, 0).UTC(),
		},
	}, nil
}
