package chathub_test

import (
	"chatup/backend/internal/chathub"
	"chatup/backend/internal/models"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefs(own, desired models.Gender) *models.Preferences {
	return &models.Preferences{OwnGender: own, DesiredGender: desired, RegionMode: models.RegionModeAny}
}

func newQueuedSession(q *chathub.Queue, id string, p *models.Preferences) (*chathub.Session, *fakeTransport) {
	t := &fakeTransport{}
	s := chathub.NewSession(id, t, time.Now())
	s.UpdatePreferences(p)
	q.Add(s)
	return s, t
}

func TestQueue_AddRemove(t *testing.T) {
	q := chathub.NewQueue()
	s, tr := newQueuedSession(q, "a", prefs(models.GenderMale, models.GenderAny))

	assert.True(t, q.Contains("a"))
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, models.StatusInQueue, s.Status())
	assert.False(t, q.Add(s), "double add must be a no-op")
	assert.Equal(t, 1, q.Len())

	got, ok := q.Remove("a")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, models.StatusIdle, s.Status())
	assert.False(t, q.Contains("a"))

	_, ok = q.Remove("a")
	assert.False(t, ok)

	statuses := tr.All("userStatusChanged")
	assert.Equal(t, []any{models.StatusInQueue, models.StatusIdle}, statuses)
}

func TestQueue_TakeKeepsIndexConsistent(t *testing.T) {
	q := chathub.NewQueue()
	for _, id := range []string{"a", "b", "c", "d"} {
		newQueuedSession(q, id, prefs(models.GenderMale, models.GenderAny))
	}

	s, ok := q.Take("a")
	require.True(t, ok)
	assert.Equal(t, models.StatusInQueue, s.Status(), "Take leaves the status alone")

	_, ok = q.Take("c")
	require.True(t, ok)

	assert.Equal(t, 2, q.Len())
	assert.True(t, q.Contains("b"))
	assert.True(t, q.Contains("d"))

	ids := make([]string, 0, q.Len())
	for _, s := range q.Sessions() {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"b", "d"}, ids)

	// every remaining entry can still be removed by id
	_, ok = q.Take("d")
	assert.True(t, ok)
	_, ok = q.Take("b")
	assert.True(t, ok)
	assert.Zero(t, q.Len())
}

func TestQueue_SearchForPartner(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("finds compatible candidate", func(t *testing.T) {
		q := chathub.NewQueue()
		a, _ := newQueuedSession(q, "a", prefs(models.GenderMale, models.GenderFemale))
		newQueuedSession(q, "b", prefs(models.GenderMale, models.GenderFemale))
		c, _ := newQueuedSession(q, "c", prefs(models.GenderFemale, models.GenderMale))

		got := q.SearchForPartner(a, nil, rng)
		require.NotNil(t, got)
		assert.Same(t, c, got)
	})

	t.Run("never returns the searcher", func(t *testing.T) {
		q := chathub.NewQueue()
		a, _ := newQueuedSession(q, "a", prefs(models.GenderMale, models.GenderAny))
		assert.Nil(t, q.SearchForPartner(a, nil, rng))
	})

	t.Run("skips candidates in a room", func(t *testing.T) {
		q := chathub.NewQueue()
		a, _ := newQueuedSession(q, "a", prefs(models.GenderMale, models.GenderAny))
		newQueuedSession(q, "b", prefs(models.GenderMale, models.GenderAny))

		busy := func(id string) bool { return id == "b" }
		assert.Nil(t, q.SearchForPartner(a, busy, rng))
	})

	t.Run("rejects one-sided gender interest", func(t *testing.T) {
		q := chathub.NewQueue()
		a, _ := newQueuedSession(q, "a", prefs(models.GenderMale, models.GenderFemale))
		newQueuedSession(q, "b", prefs(models.GenderFemale, models.GenderFemale))
		assert.Nil(t, q.SearchForPartner(a, nil, rng))
	})

	t.Run("random choice stays within candidates", func(t *testing.T) {
		q := chathub.NewQueue()
		a, _ := newQueuedSession(q, "a", prefs(models.GenderMale, models.GenderAny))
		for _, id := range []string{"b", "c", "d"} {
			newQueuedSession(q, id, prefs(models.GenderFemale, models.GenderAny))
		}
		for i := 0; i < 20; i++ {
			got := q.SearchForPartner(a, nil, rng)
			require.NotNil(t, got)
			assert.Contains(t, []string{"b", "c", "d"}, got.ID)
		}
	})
}
