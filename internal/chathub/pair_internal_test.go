package chathub

import (
	"chatup/backend/internal/models"
	"chatup/backend/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type nopTransport struct{}

func (nopTransport) Emit(string, any) {}
func (nopTransport) Close()           {}

func TestPair_JoinFailureRestoresSessions(t *testing.T) {
	m := NewManagerService(storage.NewMemoryLog(), nil, zaptest.NewLogger(t))
	m.Rooms.capacity = 1

	now := time.Now()
	a := NewSession("a", nopTransport{}, now)
	b := NewSession("b", nopTransport{}, now)
	for _, s := range []*Session{a, b} {
		m.Registry.Add(s)
		s.UpdatePreferences(&models.Preferences{
			OwnGender:     models.GenderMale,
			DesiredGender: models.GenderAny,
			RegionMode:    models.RegionModeAny,
		})
		m.Queue.Add(s)
	}

	m.pair(a, b)

	for _, s := range []*Session{a, b} {
		assert.Equal(t, models.StatusIdle, s.Status(), s.ID)
		assert.False(t, m.Queue.Contains(s.ID), s.ID)
		assert.False(t, m.Rooms.HasRoom(s.ID), s.ID)
		assert.Empty(t, s.Room().Current, s.ID)
	}
	assert.Zero(t, m.Rooms.Len())
}
