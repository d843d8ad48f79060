package chathub

import (
	"chatup/backend/internal/models"
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultSweepInterval = time.Minute

// SweepResult summarizes one sweep.
type SweepResult struct {
	Evicted []string
	Purged  []string
}

// Sweep evicts sessions that stayed disconnected longer than the grace period
// and purges rooms without members. It runs on the hub loop; ok is false when
// the loop is no longer running.
func (m *ManagerService) Sweep(now time.Time) (res SweepResult, ok bool) {
	ok = m.Call(func() { res = m.sweep(now) })
	return res, ok
}

func (m *ManagerService) sweep(now time.Time) SweepResult {
	var res SweepResult

	for _, s := range m.Registry.All() {
		if s.Status() != models.StatusDisconnected || now.Sub(s.DisconnectedAt()) <= m.grace {
			continue
		}
		m.Queue.Take(s.ID)
		if roomID := m.Rooms.RoomOf(s.ID); roomID != "" {
			partner := m.partnerOf(s)
			m.Rooms.Leave(s, roomID)
			if partner != nil && partner.Status() != models.StatusDisconnected {
				partner.emit(EventPartnerLeavedChat, nil)
			}
		}
		m.Registry.Remove(s.ID)
		res.Evicted = append(res.Evicted, s.ID)
	}

	for _, roomID := range m.Rooms.EmptyRooms() {
		if !m.Rooms.Remove(roomID) {
			continue
		}
		res.Purged = append(res.Purged, roomID)
		id := roomID
		m.archive("archive_close", func(ctx context.Context) error { return m.Archive.CloseRoom(ctx, id, now) })
	}

	if len(res.Evicted) > 0 || len(res.Purged) > 0 {
		m.metrics.AddEvictions(len(res.Evicted))
		m.metrics.AddPurgedRooms(len(res.Purged))
		m.logger.Info("sweep finished",
			zap.Int("evicted", len(res.Evicted)),
			zap.Int("purged_rooms", len(res.Purged)),
		)
		m.refreshGauges()
	}
	return res
}

// Sweeper triggers hub sweeps on a fixed interval.
type Sweeper struct {
	hub      *ManagerService
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(hub *ManagerService, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{hub: hub, interval: interval, logger: logger}
}

// Run sweeps until ctx is cancelled or the hub stops.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ok := s.hub.Sweep(s.hub.now()); !ok {
				return
			}
		}
	}
}
