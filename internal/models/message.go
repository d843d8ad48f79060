package models

import "time"

// SystemAuthor marks messages generated by the server rather than a user.
const SystemAuthor = "system"

// Message is one entry of a room's message log. Its position in the log is
// the ordering key.
type Message struct {
	// ID is assigned by the message log on append.
	ID string `json:"id"`
	// AuthorID is the sender's session id or SystemAuthor.
	AuthorID string `json:"authorId"`
	// Content is the message text.
	Content string `json:"content"`
	// Reaction is the single reaction set on the message, if any.
	Reaction string `json:"reaction,omitempty"`
	// VisibleOnlyTo restricts a system notice to one session.
	VisibleOnlyTo string `json:"visibleOnlyTo,omitempty"`
	// SentAt is the server time of the append.
	SentAt time.Time `json:"sentAt"`
}

// Author values as seen by a recipient.
const (
	AuthorMe      = "me"
	AuthorPartner = "partner"
)

// MessageView is a Message rendered for a single recipient. Session ids are
// replaced with relative author labels.
type MessageView struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	Reaction string    `json:"reaction,omitempty"`
	SentAt   time.Time `json:"sentAt"`
}

// VisibleTo reports whether the message may be shown to the session.
func (m Message) VisibleTo(sessionID string) bool {
	return m.VisibleOnlyTo == "" || m.VisibleOnlyTo == sessionID
}

// ViewFor renders the message for the given recipient.
func (m Message) ViewFor(sessionID string) MessageView {
	author := AuthorPartner
	switch m.AuthorID {
	case SystemAuthor:
		author = SystemAuthor
	case sessionID:
		author = AuthorMe
	}
	return MessageView{
		ID:       m.ID,
		Author:   author,
		Content:  m.Content,
		Reaction: m.Reaction,
		SentAt:   m.SentAt,
	}
}

// HistoryFor filters and renders a whole log for one recipient.
func HistoryFor(msgs []Message, sessionID string) []MessageView {
	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		if m.VisibleTo(sessionID) {
			out = append(out, m.ViewFor(sessionID))
		}
	}
	return out
}
