// Package matching decides whether two search profiles may be paired.
//
// Both checks are symmetric, so Compatible(a, b) == Compatible(b, a).
package matching

import (
	"chatup/backend/internal/models"
	"slices"
	"strings"
)

// Compatible reports whether a and b accept each other by gender and region.
// Missing preferences never match.
func Compatible(a, b *models.Preferences) bool {
	if a == nil || b == nil {
		return false
	}
	return GenderCompatible(a, b) && RegionCompatible(a, b)
}

// GenderCompatible checks that each side is the gender the other one wants.
func GenderCompatible(a, b *models.Preferences) bool {
	return wants(a.DesiredGender, b.OwnGender) && wants(b.DesiredGender, a.OwnGender)
}

func wants(desired, own models.Gender) bool {
	return desired == models.GenderAny || desired == own
}

// RegionCompatible checks that each side is located where the other one
// searches. A list-mode side with an unknown location counts as present in
// every region, except that two unknown locations can never satisfy two
// explicit region lists. An any-mode side with an unknown location cannot be
// found in anybody's list.
func RegionCompatible(a, b *models.Preferences) bool {
	if a.RegionMode != models.RegionModeList && b.RegionMode != models.RegionModeList {
		return true
	}
	if a.RegionMode == models.RegionModeList && b.RegionMode == models.RegionModeList &&
		!a.HasLocation() && !b.HasLocation() {
		return false
	}
	return accepts(a, b) && accepts(b, a)
}

// accepts reports whether the searcher's region filter lets the candidate in.
func accepts(searcher, candidate *models.Preferences) bool {
	if searcher.RegionMode != models.RegionModeList {
		return true
	}
	if !candidate.HasLocation() {
		return candidate.RegionMode == models.RegionModeList && len(searcher.PreferredRegions) > 0
	}
	return slices.Contains(searcher.PreferredRegions, candidate.LocationOrEmpty())
}

// SharedInterests returns the interest tags present on both sides, compared
// case-insensitively, in a's order.
func SharedInterests(a, b *models.Preferences) []string {
	if a == nil || b == nil {
		return nil
	}
	theirs := make(map[string]struct{}, len(b.Interests))
	for _, i := range b.Interests {
		theirs[strings.ToLower(strings.TrimSpace(i))] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, i := range a.Interests {
		key := strings.ToLower(strings.TrimSpace(i))
		if key == "" {
			continue
		}
		if _, ok := theirs[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
