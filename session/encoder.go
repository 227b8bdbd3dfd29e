package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const recordFormatVersionCurrent = 1

// ErrRecordCorrupt is returned when a stored session blob cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

// EncodeEntry serializes a record plus its source version into the compact
// binary wire format used by the backing stores. The version travels with
// the payload so a fetch returns both in one round-trip.
func EncodeEntry(rec Record, version uint64) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	if err := writeShortString(&buf, rec.SessionID, "sessionID"); err != nil {
		return nil, err
	}
	if err := writeShortString(&buf, rec.UserID, "userID"); err != nil {
		return nil, err
	}
	if err := writeShortString(&buf, rec.Username, "username"); err != nil {
		return nil, err
	}

	var flags byte
	if rec.IsAuthenticated {
		flags |= 1
	}
	buf.WriteByte(flags)

	if err := binary.Write(&buf, binary.BigEndian, rec.AccessCount); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.LoginTime.Unix()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.LastActivity.Unix()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, version); err != nil {
		return nil, err
	}

	if len(rec.Metadata) > 65535 {
		return nil, errors.New("metadata too large")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(rec.Metadata))); err != nil {
		return nil, err
	}
	for k, v := range rec.Metadata {
		if err := writeLongString(&buf, k, "metadata key"); err != nil {
			return nil, err
		}
		if err := writeLongString(&buf, v, "metadata value"); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// DecodeEntry parses a blob produced by [EncodeEntry].
func DecodeEntry(data []byte) (Record, uint64, error) {
	r := bytes.NewReader(data)

	format, err := r.ReadByte()
	if err != nil || format != recordFormatVersionCurrent {
		return Record{}, 0, ErrRecordCorrupt
	}

	var rec Record
	if rec.SessionID, err = readShortString(r); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}
	if rec.UserID, err = readShortString(r); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}
	if rec.Username, err = readShortString(r); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}

	flags, err := r.ReadByte()
	if err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}
	rec.IsAuthenticated = flags&1 != 0

	if err := binary.Read(r, binary.BigEndian, &rec.AccessCount); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}

	var loginUnix, activityUnix int64
	if err := binary.Read(r, binary.BigEndian, &loginUnix); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}
	if err := binary.Read(r, binary.BigEndian, &activityUnix); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}
	rec.LoginTime = time.Unix(loginUnix, 0).UTC()
	rec.LastActivity = time.Unix(activityUnix, 0).UTC()

	var version uint64
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}

	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return Record{}, 0, ErrRecordCorrupt
	}
	rec.Metadata = make(map[string]string, count)
	for i := 0; i < int(count); i++ {
		k, err := readLongString(r)
		if err != nil {
			return Record{}, 0, ErrRecordCorrupt
		}
		v, err := readLongString(r)
		if err != nil {
			return Record{}, 0, ErrRecordCorrupt
		}
		rec.Metadata[k] = v
	}

	return rec, version, nil
}

func writeShortString(buf *bytes.Buffer, s, field string) error {
	if len(s) > 255 {
		return errors.New(field + " too long")
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

func readShortString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", err
	}
	return string(out), nil
}

func writeLongString(buf *bytes.Buffer, s, field string) error {
	if len(s) > 65535 {
		return errors.New(field + " too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readLongString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", err
	}
	return string(out), nil
}
