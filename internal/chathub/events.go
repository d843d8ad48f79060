package chathub

import (
	"chatup/backend/internal/models"
	"encoding/json"
)

// Events sent by clients.
const (
	EventStartSearch  = "startSearch"
	EventCancelSearch = "cancelSearch"
	EventSendMessage  = "sendMessage"
	EventAddReaction  = "addReaction"
	EventValidateChat = "validateChat"
	EventLeaveChat    = "leavedChat"
	EventRoomLeaved   = "roomLeaved"
	EventTyping       = "typing"
	EventUpdateData   = "updateData"
)

// Events sent to clients.
const (
	EventUserAuthDone        = "userAuthDone"
	EventQueuePopulation     = "queuePopulation"
	EventPartnerFound        = "partnerFound"
	EventPartnerStatusChange = "partnerStatusChange"
	EventPartnerJoinedChat   = "partnerJoinedChat"
	EventPartnerLeavedChat   = "partnerLeavedChat"
	EventRoomDestroyed       = "roomDestroyed"
	EventUpdatedMessages     = "updatedMessages"
	EventUserStatusChanged   = "userStatusChanged"
	EventUserDataChanged     = "userDataChanged"
	EventUserRoomIDChanged   = "userRoomIdChanged"
	EventAck                 = "ack"
)

// Envelope is an inbound client frame. Ack is set when the client expects a
// reply correlated by the same number.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

// Frame is an outbound server frame.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	Ack   *int64 `json:"ack,omitempty"`
}

// AuthDone tells a client which token it is known by and which room it is in.
type AuthDone struct {
	Token  string  `json:"token"`
	RoomID *string `json:"roomId"`
}

type ReactionRequest struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type ValidateRequest struct {
	RoomID string `json:"roomId"`
	Token  string `json:"token"`
}

// ValidateResult is the reply to validateChat.
type ValidateResult struct {
	Valid    bool                  `json:"valid"`
	RoomID   string                `json:"roomId"`
	Messages []models.MessageView  `json:"messages"`
	Partner  *models.PublicProfile `json:"partner,omitempty"`
}
