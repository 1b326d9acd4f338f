package sqlstore

import (
	"strings"

	"urban-match/internal/match"
)

// whereBuilder accumulates AND-ed conditions with ? placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (wb *whereBuilder) add(clause string, args ...any) {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
}

func (wb *whereBuilder) addIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, column+" IN ("+strings.Join(placeholders, ", ")+")")
}

func (wb *whereBuilder) build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.clauses, " AND "), wb.args
}

// criteriaWhere pushes the scalar predicates of c down to SQL. Interest
// predicates stay in Go because interests are stored as a JSON document.
func criteriaWhere(c match.Criteria) (string, []any) {
	var wb whereBuilder
	wb.add("id <> ?", c.ExcludeID())
	minAge, maxAge := c.AgeRange()
	if minAge != nil {
		wb.add("age >= ?", *minAge)
	}
	if maxAge != nil {
		wb.add("age <= ?", *maxAge)
	}
	if g := c.Gender(); g != "" {
		wb.add("gender_key = ?", g)
	}
	wb.addIn("city_key", c.Cities())
	return wb.build()
}
