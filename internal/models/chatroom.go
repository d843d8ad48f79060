package models

import (
	"time"

	"github.com/lib/pq"
)

// ChatRoom is the archived record of a 1-on-1 pairing. The live room state
// is held in memory by the hub; this row only documents its lifetime.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey"`
	// User1ID is the session token of the first user in the room.
	User1ID string
	// User2ID is the session token of the second user in the room.
	User2ID string
	// SharedInterests holds the interest tags both users submitted.
	SharedInterests pq.StringArray `gorm:"type:text[]"`
	// IsActive indicates whether the chat room is currently active.
	IsActive bool
	// StartedAt is the timestamp when the chat room was created.
	StartedAt time.Time
	// EndedAt is the timestamp when the chat room was purged.
	EndedAt *time.Time
}
