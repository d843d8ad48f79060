package chathub_test

import (
	"chatup/backend/internal/chathub"
	"chatup/backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := chathub.NewRegistry()
	a := chathub.NewSession("b-token", nil, time.Now())
	b := chathub.NewSession("a-token", nil, time.Now())

	assert.True(t, r.Add(a))
	assert.True(t, r.Add(b))
	assert.False(t, r.Add(chathub.NewSession("a-token", nil, time.Now())))

	assert.Same(t, a, r.Get("b-token"))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, 2, r.Len())

	all := r.All()
	assert.Equal(t, "a-token", all[0].ID)
	assert.Equal(t, "b-token", all[1].ID)

	a.SetStatus(models.StatusInQueue)
	assert.Equal(t, map[models.SessionStatus]int{
		models.StatusIdle:    1,
		models.StatusInQueue: 1,
	}, r.CountByStatus())

	assert.True(t, r.Remove("a-token"))
	assert.False(t, r.Remove("a-token"))
	assert.Equal(t, 1, r.Len())
}

func TestSession_ProfileAndPreferences(t *testing.T) {
	tr := &fakeTransport{}
	s := chathub.NewSession("tok", tr, time.Now())

	p := prefs(models.GenderFemale, models.GenderAny)
	loc := "budapest"
	p.Location = &loc
	p.Interests = []string{"music"}
	s.UpdatePreferences(p)

	p.Interests[0] = "changed"
	assert.Equal(t, []string{"music"}, s.Preferences().Interests, "preferences are copied")

	profile := s.Profile()
	assert.Equal(t, models.StatusIdle, profile.Status)
	assert.Equal(t, models.GenderFemale, profile.OwnGender)
	assert.Equal(t, "budapest", *profile.Location)
	assert.Equal(t, []string{"music"}, profile.Interests)

	assert.Equal(t, 1, tr.Count("userDataChanged"))

	s.SetStatus(models.StatusIdle)
	assert.Zero(t, tr.Count("userStatusChanged"), "unchanged status is not re-announced")
}

func TestSession_ProfileWithoutPreferences(t *testing.T) {
	s := chathub.NewSession("tok", nil, time.Now())
	profile := s.Profile()
	assert.Nil(t, profile.Location)
	assert.NotNil(t, profile.Interests)
}
