package chathub

import (
	"chatup/backend/internal/models"
	"sort"
)

// Registry maps session tokens to live Session objects. It is the
// authoritative answer to "who is known to the hub".
type Registry struct {
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns nil for unknown ids.
func (r *Registry) Get(id string) *Session {
	return r.sessions[id]
}

// Add registers s. It returns false if the id is already taken.
func (r *Registry) Add(s *Session) bool {
	if _, ok := r.sessions[s.ID]; ok {
		return false
	}
	r.sessions[s.ID] = s
	return true
}

func (r *Registry) Remove(id string) bool {
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

// All returns the sessions ordered by id.
func (r *Registry) All() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) CountByStatus() map[models.SessionStatus]int {
	counts := make(map[models.SessionStatus]int)
	for _, s := range r.sessions {
		counts[s.status]++
	}
	return counts
}
