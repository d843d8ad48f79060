package chathub

import (
	"chatup/backend/internal/localization"
	"chatup/backend/internal/models"
	"time"
)

// RoomRef tracks the room a session is in and the one it was in before.
type RoomRef struct {
	Current string
	Last    string
}

// Session is the server-side identity of one anonymous client. It outlives
// individual connections: a reconnect with the same token reattaches a new
// Transport to the same Session.
//
// Sessions are owned by the hub loop and must only be touched from it.
type Session struct {
	ID string

	transport Transport
	status    models.SessionStatus
	prefs     *models.Preferences
	room      RoomRef

	connectedAt      time.Time
	disconnectedAt   time.Time
	disconnectReason string
}

func NewSession(id string, t Transport, now time.Time) *Session {
	return &Session{
		ID:          id,
		transport:   t,
		status:      models.StatusIdle,
		connectedAt: now,
	}
}

func (s *Session) Transport() Transport             { return s.transport }
func (s *Session) Status() models.SessionStatus     { return s.status }
func (s *Session) Preferences() *models.Preferences { return s.prefs }
func (s *Session) Room() RoomRef                    { return s.room }
func (s *Session) ConnectedAt() time.Time           { return s.connectedAt }
func (s *Session) DisconnectedAt() time.Time        { return s.disconnectedAt }
func (s *Session) DisconnectReason() string         { return s.disconnectReason }

// emit is a no-op while the session has no transport.
func (s *Session) emit(event string, data any) {
	if s.transport != nil {
		s.transport.Emit(event, data)
	}
}

// SetStatus changes the status and tells the client about it.
func (s *Session) SetStatus(status models.SessionStatus) {
	if s.status == status {
		return
	}
	s.status = status
	s.emit(EventUserStatusChanged, status)
}

// UpdatePreferences stores a private copy of p and echoes it to the client.
func (s *Session) UpdatePreferences(p *models.Preferences) {
	s.prefs = p.Clone()
	s.emit(EventUserDataChanged, s.prefs)
}

func (s *Session) setCurrentRoom(roomID string) {
	if s.room.Current != "" {
		s.room.Last = s.room.Current
	}
	s.room.Current = roomID
	s.emit(EventUserRoomIDChanged, optional(roomID))
}

func (s *Session) attach(t Transport) {
	s.transport = t
}

func (s *Session) disconnect(at time.Time, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	s.transport = nil
	s.status = models.StatusDisconnected
	s.disconnectedAt = at
	s.disconnectReason = reason
}

// recover brings a disconnected session back. The room reference is kept so
// the client can validate it.
func (s *Session) recover(at time.Time) {
	s.connectedAt = at
	s.disconnectedAt = time.Time{}
	s.disconnectReason = ""
	s.status = models.StatusIdle
}

func (s *Session) language() string {
	if s.prefs == nil || s.prefs.Language == "" {
		return localization.DefaultLanguage
	}
	return s.prefs.Language
}

// Profile is what the partner gets to see about this session.
func (s *Session) Profile() models.PublicProfile {
	p := models.PublicProfile{Status: s.status, Interests: []string{}}
	if s.prefs != nil {
		p.OwnGender = s.prefs.OwnGender
		p.Location = s.prefs.Clone().Location
		p.Interests = append(p.Interests, s.prefs.Interests...)
	}
	return p
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
