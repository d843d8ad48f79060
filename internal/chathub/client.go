package chathub

// Transport is the live channel to one connected client (e.g., a WebSocket).
// The hub holds at most one Transport per session and swaps it on reconnect.
type Transport interface {
	// Emit queues a named event for the client. It must not block the caller.
	Emit(event string, data any)
	// Close shuts the connection down. The transport later reports the
	// disconnect to the hub like any other close.
	Close()
}
