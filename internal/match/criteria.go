// Package match builds candidate filters for a target user and ranks the
// candidates a store returns for them.
package match

import (
	"slices"

	"urban-match/internal/domain"
)

// DefaultAgeSpread is the half-width of the age window derived from a profile.
const DefaultAgeSpread = 5

// InterestMode selects how a Criteria compares interest sets.
type InterestMode int

const (
	// InterestsIgnored applies no interest predicate.
	InterestsIgnored InterestMode = iota
	// InterestsAny keeps candidates sharing at least one requested interest.
	InterestsAny
	// InterestsAll keeps candidates holding every requested interest.
	InterestsAll
)

func (m InterestMode) String() string {
	switch m {
	case InterestsAny:
		return "any"
	case InterestsAll:
		return "all"
	default:
		return "ignored"
	}
}

// Criteria is an immutable set of predicates over users. Build one with
// FromPreferences or FromProfile; the zero value only excludes user 0.
type Criteria struct {
	excludeID    int64
	minAge       *int
	maxAge       *int
	gender       string
	cities       []string
	interests    []string
	interestMode InterestMode
}

// FromPreferences builds the criteria for an explicit preference request made on behalf of target.
func FromPreferences(target domain.User, prefs domain.MatchPreferences) Criteria {
	c := Criteria{
		excludeID: target.ID,
		minAge:    copyInt(prefs.MinAge),
		maxAge:    copyInt(prefs.MaxAge),
		cities:    domain.NormalizeTokens(prefs.PreferredCities),
	}

	if g := domain.NormalizeToken(prefs.GenderPreference); g != "" && g != domain.GenderAny {
		c.gender = g
	}

	if interests := domain.NormalizeTokens(prefs.Interests); len(interests) > 0 {
		c.interests = interests
		c.interestMode = InterestsAny
		if prefs.StrictInterestMatch {
			c.interestMode = InterestsAll
		}
	}
	return c
}

// FromProfile derives criteria from the target's own profile: an age window of
// spread years either side, the opposite binary gender when known, and the same city.
// A non-positive spread falls back to DefaultAgeSpread.
func FromProfile(target domain.User, spread int) Criteria {
	if spread <= 0 {
		spread = DefaultAgeSpread
	}
	lo := max(target.Age-spread, 0)
	hi := target.Age + spread

	c := Criteria{
		excludeID: target.ID,
		minAge:    &lo,
		maxAge:    &hi,
		gender:    oppositeGender(target.Gender),
	}
	if city := domain.NormalizeToken(target.City); city != "" {
		c.cities = []string{city}
	}
	return c
}

func oppositeGender(gender string) string {
	switch domain.NormalizeToken(gender) {
	case "male":
		return "female"
	case "female":
		return "male"
	default:
		return ""
	}
}

// ExcludeID is the id that never matches.
func (c Criteria) ExcludeID() int64 { return c.excludeID }

// AgeRange returns the inclusive bounds; a nil bound is open.
func (c Criteria) AgeRange() (minAge, maxAge *int) {
	return copyInt(c.minAge), copyInt(c.maxAge)
}

// Gender returns the normalized gender a candidate must have, or "" for any.
func (c Criteria) Gender() string { return c.gender }

// Cities returns the normalized cities a candidate must live in; empty means any.
func (c Criteria) Cities() []string { return slices.Clone(c.cities) }

// Interests returns the normalized interests and how they are compared.
func (c Criteria) Interests() ([]string, InterestMode) {
	return slices.Clone(c.interests), c.interestMode
}

// Matches evaluates every predicate against u.
func (c Criteria) Matches(u domain.User) bool {
	if u.ID == c.excludeID {
		return false
	}
	if c.minAge != nil && u.Age < *c.minAge {
		return false
	}
	if c.maxAge != nil && u.Age > *c.maxAge {
		return false
	}
	if c.gender != "" && domain.NormalizeToken(u.Gender) != c.gender {
		return false
	}
	if len(c.cities) > 0 && !slices.Contains(c.cities, domain.NormalizeToken(u.City)) {
		return false
	}
	return c.matchesInterests(u.Interests)
}

func (c Criteria) matchesInterests(interests []string) bool {
	switch c.interestMode {
	case InterestsAny:
		return Overlap(c.interests, interests) > 0
	case InterestsAll:
		return Overlap(c.interests, interests) == len(c.interests)
	default:
		return true
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
