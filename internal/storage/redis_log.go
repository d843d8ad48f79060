package storage

import (
	"chatup/backend/internal/ids"
	"chatup/backend/internal/models"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "chatup:room:"

// RedisLog keeps each room's log in a Redis list.
type RedisLog struct {
	Redis     *redis.Client
	KeyPrefix string
}

// NewRedisLog Constructor
func NewRedisLog(rdb *redis.Client) *RedisLog {
	return &RedisLog{Redis: rdb, KeyPrefix: defaultKeyPrefix}
}

func (l *RedisLog) key(roomID string) string {
	return l.KeyPrefix + roomID + ":messages"
}

// Append serializes the message and pushes it with RPUSH.
func (l *RedisLog) Append(ctx context.Context, roomID string, msg *models.Message) error {
	if err := prepare(msg, ids.NewMessageID); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrapf(err, "encode message for room %s", roomID)
	}
	if err := l.Redis.RPush(ctx, l.key(roomID), data).Err(); err != nil {
		return errors.Wrapf(err, "append message to room %s", roomID)
	}
	return nil
}

// List reads the whole list with LRANGE 0 -1.
func (l *RedisLog) List(ctx context.Context, roomID string) ([]models.Message, error) {
	raw, err := l.Redis.LRange(ctx, l.key(roomID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "read messages of room %s", roomID)
	}
	return decodeAll(roomID, raw)
}

// SetReaction finds the message by id in a full read and overwrites its
// position with LSET. Appends only grow the tail, so the index stays valid.
func (l *RedisLog) SetReaction(ctx context.Context, roomID, messageID, reaction string) error {
	msgs, err := l.List(ctx, roomID)
	if err != nil {
		return err
	}
	for i := range msgs {
		if msgs[i].ID != messageID {
			continue
		}
		msgs[i].Reaction = reaction
		data, err := json.Marshal(msgs[i])
		if err != nil {
			return errors.Wrapf(err, "encode message %s", messageID)
		}
		if err := l.Redis.LSet(ctx, l.key(roomID), int64(i), data).Err(); err != nil {
			return errors.Wrapf(err, "update message %s in room %s", messageID, roomID)
		}
		return nil
	}
	return ErrMessageNotFound
}

// Ping checks the connection, used by the health endpoint.
func (l *RedisLog) Ping(ctx context.Context) error {
	return l.Redis.Ping(ctx).Err()
}

func decodeAll(roomID string, raw []string) ([]models.Message, error) {
	out := make([]models.Message, 0, len(raw))
	for i, item := range raw {
		var m models.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, errors.Wrapf(err, "decode message %d of room %s", i, roomID)
		}
		out = append(out, m)
	}
	return out, nil
}
