package chathub

import (
	"chatup/backend/internal/matching"
	"chatup/backend/internal/models"
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// All handlers below run on the hub loop.

func (m *ManagerService) connect(t Transport, token string) {
	now := m.now()
	logger := m.logger.With(zap.String("session", token))

	s := m.Registry.Get(token)
	if s == nil {
		s = NewSession(token, t, now)
		m.Registry.Add(s)
		logger.Info("session created")
	} else {
		if old := s.Transport(); old != nil && old != t {
			m.Rooms.Unsubscribe(s)
			old.Close()
			logger.Info("session transport replaced")
		}
		s.attach(t)
		if s.Status() == models.StatusDisconnected {
			s.recover(now)
			logger.Info("session recovered")
		}

		if cur := s.Room().Current; cur != "" {
			if m.Rooms.IsMember(s, cur) {
				m.Rooms.Subscribe(s)
				if partner := m.partnerOf(s); partner != nil {
					partner.emit(EventPartnerStatusChange, s.Profile())
				}
			} else {
				s.setCurrentRoom("")
			}
		}
	}

	s.emit(EventUserAuthDone, AuthDone{Token: s.ID, RoomID: optional(s.Room().Current)})
	if s.Status() == models.StatusInQueue {
		s.emit(EventQueuePopulation, m.Queue.Len())
	}
	m.refreshGauges()
}

func (m *ManagerService) disconnect(sessionID string, t Transport, reason string) {
	s := m.Registry.Get(sessionID)
	if s == nil {
		return
	}
	if s.Transport() != t {
		m.logger.Debug("disconnect from stale transport ignored", zap.String("session", sessionID))
		return
	}

	m.Rooms.Unsubscribe(s)
	_, wasQueued := m.Queue.Take(s.ID)
	s.disconnect(m.now(), reason)
	m.logger.Info("session disconnected", zap.String("session", s.ID), zap.String("reason", s.DisconnectReason()))

	if wasQueued {
		m.announcePopulation()
	}

	if roomID := m.Rooms.RoomOf(s.ID); roomID != "" {
		partner := m.partnerOf(s)
		switch {
		case partner == nil:
		case partner.Status() == models.StatusDisconnected:
			m.Rooms.Destroy(roomID, func(memberID string) { m.removeFromRoom(memberID, roomID) })
			m.logger.Info("room abandoned", zap.String("room", roomID))
		default:
			partner.emit(EventPartnerStatusChange, s.Profile())
		}
	}
	m.refreshGauges()
}

func (m *ManagerService) startSearch(s *Session, prefs *models.Preferences) {
	logger := m.logger.With(zap.String("session", s.ID))

	prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		logger.Warn("search rejected", zap.Error(err))
		return
	}

	switch s.Status() {
	case models.StatusInChat:
		logger.Debug("search ignored while in chat")
		return
	case models.StatusInQueue:
		s.UpdatePreferences(prefs)
		m.scheduleSearch(s.ID)
		return
	}

	if roomID := m.Rooms.RoomOf(s.ID); roomID != "" {
		partner := m.partnerOf(s)
		m.Rooms.Leave(s, roomID)
		if partner != nil {
			partner.emit(EventPartnerLeavedChat, nil)
			if partner.Status() == models.StatusInChat {
				partner.SetStatus(models.StatusIdle)
			}
		}
	}

	s.UpdatePreferences(prefs)
	if !m.Queue.Add(s) {
		return
	}
	logger.Debug("session queued", zap.Int("queue", m.Queue.Len()))
	m.announcePopulation()
	m.refreshGauges()
	m.scheduleSearch(s.ID)
}

// scheduleSearch runs the partner search as its own loop task.
func (m *ManagerService) scheduleSearch(sessionID string) {
	go m.post(func() { m.search(sessionID) })
}

func (m *ManagerService) search(sessionID string) {
	s := m.Registry.Get(sessionID)
	if s == nil || s.Status() != models.StatusInQueue {
		return
	}
	partner := m.Queue.SearchForPartner(s, m.Rooms.HasRoom, m.rng)
	if partner == nil {
		m.logger.Debug("no partner found", zap.String("session", s.ID))
		return
	}
	m.pair(s, partner)
}

func (m *ManagerService) pair(a, b *Session) {
	m.Queue.Take(a.ID)
	m.Queue.Take(b.ID)

	roomID := m.Rooms.Create()
	for _, s := range []*Session{a, b} {
		if err := m.Rooms.Join(s, roomID); err != nil {
			m.logger.Error("failed to join matched room", zap.String("room", roomID), zap.String("session", s.ID), zap.Error(err))
			m.abortPair(roomID, a, b)
			return
		}
	}

	a.SetStatus(models.StatusInChat)
	b.SetStatus(models.StatusInChat)
	a.emit(EventPartnerFound, true)
	b.emit(EventPartnerFound, true)

	shared := matching.SharedInterests(a.Preferences(), b.Preferences())
	notices := []*models.Message{m.joinNotice(a, shared), m.joinNotice(b, shared)}
	m.appendAndBroadcast(roomID, "append_notice", notices...)

	record := &models.ChatRoom{
		RoomID:          roomID,
		User1ID:         a.ID,
		User2ID:         b.ID,
		SharedInterests: shared,
		IsActive:        true,
		StartedAt:       m.now(),
	}
	m.archive("archive_save", func(ctx context.Context) error { return m.Archive.SaveRoom(ctx, record) })

	m.metrics.IncMatches()
	m.logger.Info("sessions matched",
		zap.String("room", roomID),
		zap.String("user1", a.ID),
		zap.String("user2", b.ID),
		zap.Strings("shared_interests", shared),
	)
	m.announcePopulation()
	m.refreshGauges()
}

// abortPair undoes a half-made pairing: the sessions leave the room and
// return to IDLE, and the room is dropped.
func (m *ManagerService) abortPair(roomID string, sessions ...*Session) {
	for _, s := range sessions {
		m.Rooms.Leave(s, roomID)
		s.SetStatus(models.StatusIdle)
	}
	m.Rooms.Remove(roomID)
	m.announcePopulation(sessions...)
	m.refreshGauges()
}

func (m *ManagerService) joinNotice(s *Session, shared []string) *models.Message {
	lang := s.language()
	text := m.texts.GetString(lang, "partner_joined")
	if len(shared) > 0 {
		text += " " + m.texts.Format(lang, "shared_interests", strings.Join(shared, ", "))
	}
	return &models.Message{AuthorID: models.SystemAuthor, Content: text, VisibleOnlyTo: s.ID}
}

func (m *ManagerService) cancelSearch(s *Session) {
	if _, ok := m.Queue.Remove(s.ID); !ok {
		return
	}
	m.announcePopulation(s)
	m.refreshGauges()
}

func (m *ManagerService) sendMessage(s *Session, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if utf8.RuneCountInString(text) > m.maxMessageLength {
		m.logger.Warn("message too long", zap.String("session", s.ID), zap.Int("limit", m.maxMessageLength))
		return
	}
	roomID := m.Rooms.RoomOf(s.ID)
	if roomID == "" {
		m.logger.Debug("message outside of a room dropped", zap.String("session", s.ID))
		return
	}

	msg := &models.Message{AuthorID: s.ID, Content: text}
	m.persist(roomID, "append", func(ctx context.Context) ([]models.Message, error) {
		if err := m.Log.Append(ctx, roomID, msg); err != nil {
			return nil, err
		}
		return m.Log.List(ctx, roomID)
	}, func(history []models.Message) {
		m.metrics.IncMessages()
		m.pushHistory(roomID, history)
	})
}

func (m *ManagerService) addReaction(s *Session, req ReactionRequest) {
	if req.MessageID == "" || utf8.RuneCountInString(req.Reaction) > maxReactionLength {
		return
	}
	roomID := m.Rooms.RoomOf(s.ID)
	if roomID == "" {
		return
	}
	m.persist(roomID, "reaction", func(ctx context.Context) ([]models.Message, error) {
		if err := m.Log.SetReaction(ctx, roomID, req.MessageID, req.Reaction); err != nil {
			return nil, err
		}
		return m.Log.List(ctx, roomID)
	}, func(history []models.Message) {
		m.pushHistory(roomID, history)
	})
}

func (m *ManagerService) validateChat(s *Session, req ValidateRequest, reply func(any)) {
	invalid := ValidateResult{RoomID: req.RoomID, Messages: []models.MessageView{}}

	if req.Token != "" && req.Token != s.ID {
		reply(invalid)
		return
	}
	roomID := req.RoomID
	if !m.Rooms.IsMember(s, roomID) {
		if roomID != "" && s.Room().Current == roomID {
			s.setCurrentRoom("")
		}
		reply(invalid)
		return
	}

	m.Rooms.Subscribe(s)
	s.SetStatus(models.StatusInChat)

	var notices []*models.Message
	if partner := m.partnerOf(s); partner != nil {
		if partner.Status() != models.StatusDisconnected {
			partner.SetStatus(models.StatusInChat)
		}
		partner.emit(EventPartnerStatusChange, s.Profile())
		partner.emit(EventPartnerJoinedChat, s.Profile())
		s.emit(EventPartnerStatusChange, partner.Profile())
		notices = append(notices, &models.Message{
			AuthorID:      models.SystemAuthor,
			Content:       m.texts.GetString(partner.language(), "partner_rejoined"),
			VisibleOnlyTo: partner.ID,
		})
	}

	m.persist(roomID, "validate", func(ctx context.Context) ([]models.Message, error) {
		for _, n := range notices {
			if err := m.Log.Append(ctx, roomID, n); err != nil {
				return nil, err
			}
		}
		return m.Log.List(ctx, roomID)
	}, func(history []models.Message) {
		if !m.Rooms.IsMember(s, roomID) {
			reply(invalid)
			return
		}
		res := ValidateResult{Valid: true, RoomID: roomID, Messages: models.HistoryFor(history, s.ID)}
		if partner := m.partnerOf(s); partner != nil {
			profile := partner.Profile()
			res.Partner = &profile
			partner.emit(EventUpdatedMessages, models.HistoryFor(history, partner.ID))
		}
		reply(res)
	})
	m.refreshGauges()
}

// leaveChat marks the session as having left the conversation. Membership is
// kept until roomLeaved, a new search or eviction.
func (m *ManagerService) leaveChat(s *Session) {
	if s.Status() == models.StatusInQueue {
		return
	}
	if partner := m.partnerOf(s); partner != nil {
		partner.emit(EventPartnerLeavedChat, nil)
	}
	s.SetStatus(models.StatusIdle)
	m.refreshGauges()
}

func (m *ManagerService) roomLeaved(s *Session) {
	roomID := m.Rooms.RoomOf(s.ID)
	if roomID == "" {
		return
	}
	m.Rooms.Destroy(roomID, func(memberID string) {
		if memberID != s.ID {
			if member := m.Registry.Get(memberID); member != nil {
				member.emit(EventRoomDestroyed, roomID)
				if member.Status() == models.StatusInChat {
					member.SetStatus(models.StatusIdle)
				}
			}
		}
		m.removeFromRoom(memberID, roomID)
	})
	if s.Status() == models.StatusInChat {
		s.SetStatus(models.StatusIdle)
	}
	m.logger.Info("room destroyed", zap.String("room", roomID), zap.String("by", s.ID))
	m.refreshGauges()
}

func (m *ManagerService) typing(s *Session, payload json.RawMessage) {
	if partner := m.partnerOf(s); partner != nil {
		partner.emit(EventTyping, payload)
	}
}

func (m *ManagerService) updateData(s *Session, prefs *models.Preferences) {
	prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		m.logger.Warn("preferences rejected", zap.String("session", s.ID), zap.Error(err))
		return
	}
	s.UpdatePreferences(prefs)
	if s.Status() == models.StatusInQueue {
		m.scheduleSearch(s.ID)
	}
}

func (m *ManagerService) partnerOf(s *Session) *Session {
	if id := m.Rooms.Partner(s); id != "" {
		return m.Registry.Get(id)
	}
	return nil
}

func (m *ManagerService) removeFromRoom(memberID, roomID string) {
	if member := m.Registry.Get(memberID); member != nil {
		m.Rooms.Leave(member, roomID)
		return
	}
	m.Rooms.RemoveMember(memberID, roomID)
}

func (m *ManagerService) appendAndBroadcast(roomID, op string, msgs ...*models.Message) {
	m.persist(roomID, op, func(ctx context.Context) ([]models.Message, error) {
		for _, msg := range msgs {
			if err := m.Log.Append(ctx, roomID, msg); err != nil {
				return nil, err
			}
		}
		return m.Log.List(ctx, roomID)
	}, func(history []models.Message) {
		m.pushHistory(roomID, history)
	})
}

// pushHistory sends each subscribed member its own view of the room's log.
func (m *ManagerService) pushHistory(roomID string, history []models.Message) {
	if !m.Rooms.Exists(roomID) {
		return
	}
	m.Groups.Broadcast(roomID, EventUpdatedMessages, func(memberID string) any {
		return models.HistoryFor(history, memberID)
	})
}

// announcePopulation tells every queued session (and any extra sessions that
// just left the queue) how many sessions are waiting.
func (m *ManagerService) announcePopulation(extra ...*Session) {
	n := m.Queue.Len()
	for _, s := range m.Queue.Sessions() {
		s.emit(EventQueuePopulation, n)
	}
	for _, s := range extra {
		s.emit(EventQueuePopulation, n)
	}
	m.metrics.SetQueueSize(n)
}

func (m *ManagerService) refreshGauges() {
	m.metrics.SetQueueSize(m.Queue.Len())
	m.metrics.SetRooms(m.Rooms.Len())
	m.metrics.SetSessions(m.Registry.CountByStatus())
}
