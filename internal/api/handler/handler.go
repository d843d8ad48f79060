package handler

import (
	"chatup/backend/internal/chathub"
	"chatup/backend/internal/topics"
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Handler serves the HTTP surface of the chat service.
type Handler struct {
	Hub    *chathub.ManagerService
	Tokens *TokenIssuer
	Topics *topics.Picker
	Health HealthCheck

	checkOrigin func(r *http.Request) bool
	logger      *zap.Logger
}

func NewHandler(hub *chathub.ManagerService, tokens *TokenIssuer, picker *topics.Picker, checkOrigin func(r *http.Request) bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		Hub:         hub,
		Tokens:      tokens,
		Topics:      picker,
		checkOrigin: checkOrigin,
		logger:      logger,
	}
}

// OriginChecker accepts WebSocket upgrades from trusted only. In development
// mode, or when trusted is empty, every origin is accepted.
func OriginChecker(trusted string, development bool) func(r *http.Request) bool {
	if development || trusted == "" {
		return func(*http.Request) bool { return true }
	}
	want, err := url.Parse(trusted)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if err != nil {
			return origin == trusted
		}
		got, perr := url.Parse(origin)
		return perr == nil && got.Scheme == want.Scheme && got.Host == want.Host
	}
}
