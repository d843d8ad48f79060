package chathub

import (
	"chatup/backend/internal/matching"
	"chatup/backend/internal/models"
	"math/rand/v2"
)

// Queue holds the sessions waiting for a partner. Membership checks and
// removals are O(1); order is not preserved across removals.
type Queue struct {
	entries []*Session
	index   map[string]int
}

func NewQueue() *Queue {
	return &Queue{index: make(map[string]int)}
}

// Add enqueues s and marks it IN_QUEUE. It returns false if s is already queued.
func (q *Queue) Add(s *Session) bool {
	if _, ok := q.index[s.ID]; ok {
		return false
	}
	q.index[s.ID] = len(q.entries)
	q.entries = append(q.entries, s)
	s.SetStatus(models.StatusInQueue)
	return true
}

// Remove dequeues the session and marks it IDLE.
func (q *Queue) Remove(id string) (*Session, bool) {
	s, ok := q.Take(id)
	if ok {
		s.SetStatus(models.StatusIdle)
	}
	return s, ok
}

// Take dequeues the session without touching its status. Callers are
// expected to move it into another state themselves.
func (q *Queue) Take(id string) (*Session, bool) {
	i, ok := q.index[id]
	if !ok {
		return nil, false
	}
	s := q.entries[i]
	last := len(q.entries) - 1
	if i != last {
		q.entries[i] = q.entries[last]
		q.index[q.entries[i].ID] = i
	}
	q.entries[last] = nil
	q.entries = q.entries[:last]
	delete(q.index, id)
	return s, true
}

func (q *Queue) Contains(id string) bool {
	_, ok := q.index[id]
	return ok
}

func (q *Queue) Len() int {
	return len(q.entries)
}

// Sessions returns a snapshot of the queued sessions.
func (q *Queue) Sessions() []*Session {
	out := make([]*Session, len(q.entries))
	copy(out, q.entries)
	return out
}

// SearchForPartner picks a random compatible candidate for s among the other
// queued sessions that are not in a room. It returns nil when there is none.
func (q *Queue) SearchForPartner(s *Session, inRoom func(id string) bool, rng *rand.Rand) *Session {
	var candidates []*Session
	for _, c := range q.entries {
		if c.ID == s.ID {
			continue
		}
		if inRoom != nil && inRoom(c.ID) {
			continue
		}
		if !matching.Compatible(s.prefs, c.prefs) {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil
	}
	if rng == nil {
		return candidates[rand.IntN(len(candidates))]
	}
	return candidates[rng.IntN(len(candidates))]
}
