package models

import (
	"errors"
	"fmt"
	"strings"
)

// Gender is a self-declared gender or a partner preference.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	// GenderAny is only valid as a desired gender.
	GenderAny Gender = "any"
)

// RegionMode tells whether a user accepts partners from anywhere or only from
// an explicit list of regions.
type RegionMode string

const (
	RegionModeAny  RegionMode = "any"
	RegionModeList RegionMode = "list"
)

// MaxInterests caps the number of interest tags accepted with a search request.
const MaxInterests = 20

// Preferences is the profile a client submits before searching for a partner.
type Preferences struct {
	// OwnGender is the gender the user declares for themselves.
	OwnGender Gender `json:"ownGender"`
	// DesiredGender is the gender the user wants to talk to, or "any".
	DesiredGender Gender `json:"desiredGender"`
	// Location is the user's own region. Nil means unknown, which is treated
	// as being present in every region.
	Location *string `json:"location"`
	// RegionMode selects between accepting anyone and PreferredRegions only.
	RegionMode RegionMode `json:"regionMode"`
	// PreferredRegions lists the regions a partner must be located in when
	// RegionMode is "list".
	PreferredRegions []string `json:"preferredRegions"`
	// Interests are free-form tags used to describe the pairing.
	Interests []string `json:"interests"`
	// Language selects the locale of system notices. Empty means English.
	Language string `json:"language,omitempty"`
}

var ErrInvalidPreferences = errors.New("invalid preferences")

// Validate checks that the preferences can take part in matching.
func (p *Preferences) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: missing", ErrInvalidPreferences)
	}
	switch p.OwnGender {
	case GenderMale, GenderFemale:
	default:
		return fmt.Errorf("%w: ownGender %q", ErrInvalidPreferences, p.OwnGender)
	}
	switch p.DesiredGender {
	case GenderMale, GenderFemale, GenderAny:
	default:
		return fmt.Errorf("%w: desiredGender %q", ErrInvalidPreferences, p.DesiredGender)
	}
	switch p.RegionMode {
	case RegionModeAny:
	case RegionModeList:
		if len(p.PreferredRegions) == 0 {
			return fmt.Errorf("%w: regionMode list without regions", ErrInvalidPreferences)
		}
	default:
		return fmt.Errorf("%w: regionMode %q", ErrInvalidPreferences, p.RegionMode)
	}
	if len(p.Interests) > MaxInterests {
		return fmt.Errorf("%w: more than %d interests", ErrInvalidPreferences, MaxInterests)
	}
	return nil
}

// LocationOrEmpty returns the location, or "" when it is unknown.
func (p *Preferences) LocationOrEmpty() string {
	if p == nil || p.Location == nil {
		return ""
	}
	return *p.Location
}

// HasLocation reports whether a concrete location was given. A blank string
// counts as unknown.
func (p *Preferences) HasLocation() bool {
	return p.LocationOrEmpty() != ""
}

// Normalize lower-cases and trims the region related fields so that
// comparisons in the matcher are exact.
func (p *Preferences) Normalize() {
	if p.Location != nil {
		loc := strings.ToLower(strings.TrimSpace(*p.Location))
		if loc == "" {
			p.Location = nil
		} else {
			p.Location = &loc
		}
	}
	regions := p.PreferredRegions[:0]
	for _, r := range p.PreferredRegions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			regions = append(regions, r)
		}
	}
	p.PreferredRegions = regions
	p.OwnGender = Gender(strings.ToLower(string(p.OwnGender)))
	p.DesiredGender = Gender(strings.ToLower(string(p.DesiredGender)))
	p.RegionMode = RegionMode(strings.ToLower(string(p.RegionMode)))
}

// Clone returns a deep copy so a session never shares slices with the caller.
func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	out := *p
	if p.Location != nil {
		loc := *p.Location
		out.Location = &loc
	}
	out.PreferredRegions = append([]string(nil), p.PreferredRegions...)
	out.Interests = append([]string(nil), p.Interests...)
	return &out
}

// PublicProfile is the part of a user's preferences shown to their partner.
type PublicProfile struct {
	Status    SessionStatus `json:"status"`
	OwnGender Gender        `json:"ownGender,omitempty"`
	Location  *string       `json:"location"`
	Interests []string      `json:"interests"`
}
