package match

import (
	"sort"

	"urban-match/internal/domain"
)

// Overlap counts the distinct normalized interests present in both sets.
func Overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, interest := range domain.NormalizeTokens(a) {
		set[interest] = struct{}{}
	}
	n := 0
	for _, interest := range domain.NormalizeTokens(b) {
		if _, ok := set[interest]; ok {
			n++
		}
	}
	return n
}

// Rank returns a new slice of candidates ordered by descending interest overlap
// with reference. Equal overlaps keep their incoming order. An empty reference
// leaves the order untouched.
func Rank(reference []string, candidates []domain.User) []domain.User {
	ranked := make([]domain.User, len(candidates))
	copy(ranked, candidates)
	if len(domain.NormalizeTokens(reference)) == 0 {
		return ranked
	}

	type scored struct {
		user  domain.User
		score int
	}
	entries := make([]scored, len(candidates))
	for i, u := range candidates {
		entries[i] = scored{user: u, score: Overlap(reference, u.Interests)}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
	for i := range entries {
		ranked[i] = entries[i].user
	}
	return ranked
}
