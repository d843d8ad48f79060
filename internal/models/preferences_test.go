package models_test

import (
	"chatup/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

// TestPreferencesValidate covers accepted and rejected search profiles.
func TestPreferencesValidate(t *testing.T) {
	tests := []struct {
		name    string
		prefs   *models.Preferences
		wantErr bool
	}{
		{
			name: "Any region, any partner",
			prefs: &models.Preferences{
				OwnGender: models.GenderMale, DesiredGender: models.GenderAny,
				RegionMode: models.RegionModeAny,
			},
		},
		{
			name: "List mode with regions",
			prefs: &models.Preferences{
				OwnGender: models.GenderFemale, DesiredGender: models.GenderMale,
				RegionMode: models.RegionModeList, PreferredRegions: []string{"budapest"},
			},
		},
		{
			name:    "Nil preferences",
			prefs:   nil,
			wantErr: true,
		},
		{
			name: "Own gender any",
			prefs: &models.Preferences{
				OwnGender: models.GenderAny, DesiredGender: models.GenderAny,
				RegionMode: models.RegionModeAny,
			},
			wantErr: true,
		},
		{
			name: "Unknown desired gender",
			prefs: &models.Preferences{
				OwnGender: models.GenderMale, DesiredGender: "robot",
				RegionMode: models.RegionModeAny,
			},
			wantErr: true,
		},
		{
			name: "List mode without regions",
			prefs: &models.Preferences{
				OwnGender: models.GenderMale, DesiredGender: models.GenderFemale,
				RegionMode: models.RegionModeList,
			},
			wantErr: true,
		},
		{
			name: "Unknown region mode",
			prefs: &models.Preferences{
				OwnGender: models.GenderMale, DesiredGender: models.GenderFemale,
				RegionMode: "nearby",
			},
			wantErr: true,
		},
		{
			name: "Too many interests",
			prefs: &models.Preferences{
				OwnGender: models.GenderMale, DesiredGender: models.GenderFemale,
				RegionMode: models.RegionModeAny, Interests: make([]string, models.MaxInterests+1),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prefs.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidPreferences)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreferencesNormalize(t *testing.T) {
	p := &models.Preferences{
		OwnGender:        "Male",
		DesiredGender:    "ANY",
		Location:         strPtr("  Budapest "),
		RegionMode:       "List",
		PreferredRegions: []string{" Gyms", "", "BAZ"},
	}

	p.Normalize()

	assert.Equal(t, models.GenderMale, p.OwnGender)
	assert.Equal(t, models.GenderAny, p.DesiredGender)
	assert.Equal(t, "budapest", p.LocationOrEmpty())
	assert.Equal(t, models.RegionModeList, p.RegionMode)
	assert.Equal(t, []string{"gyms", "baz"}, p.PreferredRegions)
}

func TestPreferencesNormalize_BlankLocationBecomesUnknown(t *testing.T) {
	p := &models.Preferences{Location: strPtr("   ")}

	p.Normalize()

	assert.Nil(t, p.Location)
	assert.False(t, p.HasLocation())
}

func TestPreferencesClone_DoesNotShareSlices(t *testing.T) {
	orig := &models.Preferences{
		Location:         strPtr("pest"),
		PreferredRegions: []string{"budapest"},
		Interests:        []string{"music"},
	}

	cp := orig.Clone()
	cp.PreferredRegions[0] = "vas"
	cp.Interests[0] = "chess"
	*cp.Location = "zala"

	assert.Equal(t, "budapest", orig.PreferredRegions[0])
	assert.Equal(t, "music", orig.Interests[0])
	assert.Equal(t, "pest", *orig.Location)
	assert.Nil(t, (*models.Preferences)(nil).Clone())
}
