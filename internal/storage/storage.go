// Package storage holds the persistence adapters of the chat service: the
// per-room message log and the archive of room lifetimes.
package storage

import (
	"chatup/backend/internal/models"
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrMessageNotFound is returned when a message id is absent from a room's log.
var ErrMessageNotFound = errors.New("message not found")

// MessageLog is an append-only ordered list of messages per room. Entries are
// addressed by position; the only permitted update is setting a reaction.
type MessageLog interface {
	// Append pushes msg to the tail of the room's log. It assigns msg.ID and
	// msg.SentAt when they are empty.
	Append(ctx context.Context, roomID string, msg *models.Message) error
	// List returns the full log of the room in append order.
	List(ctx context.Context, roomID string) ([]models.Message, error)
	// SetReaction rewrites the reaction of the message with the given id.
	// It returns ErrMessageNotFound when the id is not in the log.
	SetReaction(ctx context.Context, roomID, messageID, reaction string) error
}

// RoomArchive records when rooms were opened and closed.
type RoomArchive interface {
	SaveRoom(ctx context.Context, room *models.ChatRoom) error
	CloseRoom(ctx context.Context, roomID string, endedAt time.Time) error
	GetActiveRoomIDs(ctx context.Context) ([]string, error)
}

// prepare fills the fields a log assigns on append.
func prepare(msg *models.Message, newID func(time.Time) (string, error)) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	if msg.ID != "" {
		return nil
	}
	id, err := newID(msg.SentAt)
	if err != nil {
		return errors.Wrap(err, "generate message id")
	}
	msg.ID = id
	return nil
}
