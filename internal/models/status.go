package models

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusIdle         SessionStatus = "IDLE"
	StatusInQueue      SessionStatus = "IN_QUEUE"
	StatusInChat       SessionStatus = "IN_CHAT"
	StatusDisconnected SessionStatus = "DISCONNECTED"
)
