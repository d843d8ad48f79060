package chathub

import (
	"chatup/backend/internal/ids"
	"slices"
	"time"

	"github.com/pkg/errors"
)

const roomCapacity = 2

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

// Room is a conversation space for at most two sessions.
type Room struct {
	ID        string
	Members   []string
	CreatedAt time.Time
}

// RoomManager owns every room and the member index. Joining and leaving
// keeps the room's broadcast group and the member's RoomRef in step.
type RoomManager struct {
	capacity int
	rooms    map[string]*Room
	memberOf map[string]string
	groups   *Groups
	now      func() time.Time
}

func NewRoomManager(groups *Groups, now func() time.Time) *RoomManager {
	if now == nil {
		now = time.Now
	}
	return &RoomManager{
		capacity: roomCapacity,
		rooms:    make(map[string]*Room),
		memberOf: make(map[string]string),
		groups:   groups,
		now:      now,
	}
}

// Create opens an empty room and returns its id.
func (m *RoomManager) Create() string {
	id := ids.NewRoomID()
	m.rooms[id] = &Room{ID: id, CreatedAt: m.now()}
	return id
}

func (m *RoomManager) Exists(roomID string) bool {
	_, ok := m.rooms[roomID]
	return ok
}

func (m *RoomManager) Members(roomID string) []string {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	return slices.Clone(room.Members)
}

// Join puts s into the room, leaving whatever room it was in first.
func (m *RoomManager) Join(s *Session, roomID string) error {
	room, ok := m.rooms[roomID]
	if !ok {
		return errors.Wrap(ErrRoomNotFound, roomID)
	}
	if slices.Contains(room.Members, s.ID) {
		return nil
	}
	if len(room.Members) >= m.capacity {
		return errors.Wrap(ErrRoomFull, roomID)
	}
	if prev := m.memberOf[s.ID]; prev != "" {
		m.Leave(s, prev)
	}
	room.Members = append(room.Members, s.ID)
	m.memberOf[s.ID] = roomID
	s.setCurrentRoom(roomID)
	if t := s.Transport(); t != nil {
		m.groups.Join(roomID, s.ID, t)
	}
	return nil
}

// Leave removes s from roomID, or from its current room when roomID is empty.
// It reports whether s was a member.
func (m *RoomManager) Leave(s *Session, roomID string) bool {
	if roomID == "" {
		roomID = m.memberOf[s.ID]
	}
	if !m.RemoveMember(s.ID, roomID) {
		return false
	}
	if s.room.Current == roomID {
		s.setCurrentRoom("")
	}
	return true
}

// RemoveMember drops a member id from the room without touching any session.
func (m *RoomManager) RemoveMember(memberID, roomID string) bool {
	room, ok := m.rooms[roomID]
	if !ok {
		return false
	}
	i := slices.Index(room.Members, memberID)
	if i < 0 {
		return false
	}
	room.Members = slices.Delete(room.Members, i, i+1)
	if m.memberOf[memberID] == roomID {
		delete(m.memberOf, memberID)
	}
	m.groups.Leave(roomID, memberID)
	return true
}

// Destroy calls fn for every member of the room. fn is expected to make the
// member leave; the empty room itself is purged later by the sweeper.
func (m *RoomManager) Destroy(roomID string, fn func(memberID string)) {
	for _, id := range m.Members(roomID) {
		fn(id)
	}
}

// Partner returns the id of the other member of s's current room.
func (m *RoomManager) Partner(s *Session) string {
	roomID := m.memberOf[s.ID]
	room, ok := m.rooms[roomID]
	if !ok {
		return ""
	}
	for _, id := range room.Members {
		if id != s.ID {
			return id
		}
	}
	return ""
}

func (m *RoomManager) IsMember(s *Session, roomID string) bool {
	return roomID != "" && m.memberOf[s.ID] == roomID
}

// RoomOf returns the room the member is in, or "".
func (m *RoomManager) RoomOf(memberID string) string {
	return m.memberOf[memberID]
}

func (m *RoomManager) HasRoom(memberID string) bool {
	return m.memberOf[memberID] != ""
}

// Subscribe (re)attaches the session's current transport to its room group.
func (m *RoomManager) Subscribe(s *Session) {
	roomID := m.memberOf[s.ID]
	if roomID == "" || s.Transport() == nil {
		return
	}
	m.groups.Join(roomID, s.ID, s.Transport())
}

// Unsubscribe detaches the session's transport from its room group while
// keeping the membership.
func (m *RoomManager) Unsubscribe(s *Session) {
	if roomID := m.memberOf[s.ID]; roomID != "" {
		m.groups.Leave(roomID, s.ID)
	}
}

func (m *RoomManager) EmptyRooms() []string {
	var out []string
	for id, room := range m.rooms {
		if len(room.Members) == 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Remove deletes an empty room. Rooms with members are left alone.
func (m *RoomManager) Remove(roomID string) bool {
	room, ok := m.rooms[roomID]
	if !ok || len(room.Members) > 0 {
		return false
	}
	delete(m.rooms, roomID)
	return true
}

func (m *RoomManager) Len() int {
	return len(m.rooms)
}
