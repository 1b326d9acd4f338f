package domain

// GenderAny disables the gender filter of MatchPreferences.
const GenderAny = "any"

// MatchPreferences describes an explicit match request. It is never persisted.
type MatchPreferences struct {
	MinAge              *int
	MaxAge              *int
	PreferredCities     []string
	Interests           []string
	StrictInterestMatch bool
	GenderPreference    string
}
