package storage

import (
	"chatup/backend/internal/ids"
	"chatup/backend/internal/models"
	"context"
	"sync"
)

// MemoryLog is the message log used when Redis is not configured, and in tests.
type MemoryLog struct {
	mu    sync.Mutex
	rooms map[string][]models.Message
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{rooms: make(map[string][]models.Message)}
}

func (l *MemoryLog) Append(ctx context.Context, roomID string, msg *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prepare(msg, ids.NewMessageID); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[roomID] = append(l.rooms[roomID], *msg)
	return nil
}

func (l *MemoryLog) List(ctx context.Context, roomID string) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Message{}, l.rooms[roomID]...), nil
}

func (l *MemoryLog) SetReaction(ctx context.Context, roomID, messageID, reaction string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := l.rooms[roomID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Reaction = reaction
			return nil
		}
	}
	return ErrMessageNotFound
}
