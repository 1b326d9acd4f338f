package domain

import "time"

// User is a profile that can be matched against other profiles.
type User struct {
	ID        int64
	Name      string
	Age       int
	Gender    string
	Email     string
	City      string
	Interests []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch carries the fields of a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name      *string
	Age       *int
	Gender    *string
	Email     *string
	City      *string
	Interests []string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil && p.Email == nil && p.City == nil && p.Interests == nil
}

// Apply merges the patch into the user. Scalars are replaced; interests are
// unioned with the existing set, keeping the existing spelling of duplicates.
func (u *User) Apply(p UserPatch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Interests != nil {
		u.Interests = UnionInterests(u.Interests, p.Interests)
	}
}

// UnionInterests returns base followed by the entries of extra not already present.
// Comparison uses NormalizeToken.
func UnionInterests(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, interest := range list {
			key := NormalizeToken(interest)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, interest)
		}
	}
	return out
}
