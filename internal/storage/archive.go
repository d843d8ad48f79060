package storage

import (
	"chatup/backend/internal/models"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormArchive stores ChatRoom rows in PostgreSQL.
type GormArchive struct {
	DB *gorm.DB
}

func NewGormArchive(db *gorm.DB) *GormArchive {
	return &GormArchive{DB: db}
}

// SaveRoom upserts the room row.
func (a *GormArchive) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	if err := a.DB.WithContext(ctx).Save(room).Error; err != nil {
		return errors.Wrapf(err, "save room %s", room.RoomID)
	}
	return nil
}

// CloseRoom sets IsActive = false and EndedAt for the room.
func (a *GormArchive) CloseRoom(ctx context.Context, roomID string, endedAt time.Time) error {
	err := a.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  endedAt,
		}).Error
	if err != nil {
		return errors.Wrapf(err, "close room %s", roomID)
	}
	return nil
}

// GetActiveRoomIDs returns the ids of all rooms still marked active.
func (a *GormArchive) GetActiveRoomIDs(ctx context.Context) ([]string, error) {
	var roomIDs []string

	if err := a.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error; err != nil {
		return nil, errors.Wrap(err, "list active rooms")
	}
	return roomIDs, nil
}

// NopArchive discards everything. It is used when no database is configured.
type NopArchive struct{}

func (NopArchive) SaveRoom(context.Context, *models.ChatRoom) error { return nil }
func (NopArchive) CloseRoom(context.Context, string, time.Time) error { return nil }
func (NopArchive) GetActiveRoomIDs(context.Context) ([]string, error) { return nil, nil }
