// Package ids generates and validates the identifiers used across the chat
// service: session tokens and room ids are UUIDs, message ids are ULIDs so
// that they sort in append order.
package ids

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewToken returns a fresh anonymous session token (UUIDv4).
func NewToken() string {
	return uuid.New().String()
}

// IsValidToken reports whether the token is a canonical UUIDv4.
func IsValidToken(token string) bool {
	id, err := uuid.Parse(token)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.String() == token
}

// NewRoomID returns a new room identifier.
func NewRoomID() string {
	return uuid.New().String()
}

// NewMessageID returns a ULID string (26 chars) for a log entry.
func NewMessageID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
