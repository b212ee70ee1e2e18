package repository

import (
	"strings"

	"gorm.io/gorm"
)

// QueryFilter accumulates parameterized WHERE predicates. Each clause is
// joined with AND; values are always bound, never interpolated.
type QueryFilter struct {
	clauses []string
	args    [][]interface{}
}

func NewQueryFilter() *QueryFilter {
	return &QueryFilter{}
}

func (f *QueryFilter) Add(clause string, args ...interface{}) *QueryFilter {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args)
	return f
}

// AddIf adds the clause only when cond holds.
func (f *QueryFilter) AddIf(cond bool, clause string, args ...interface{}) *QueryFilter {
	if cond {
		f.Add(clause, args...)
	}
	return f
}

// Len is the number of predicates that will be applied.
func (f *QueryFilter) Len() int {
	return len(f.clauses)
}

func (f *QueryFilter) Apply(q *gorm.DB) *gorm.DB {
	for i, clause := range f.clauses {
		q = q.Where(clause, f.args[i]...)
	}
	return q
}

// ContainsPattern builds a case-insensitive LIKE operand for LOWER(col).
func ContainsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// SortSpec maps client sort keys to column expressions. Only keys present
// in Columns ever reach ORDER BY.
type SortSpec struct {
	Columns    map[string]string
	DefaultKey string
	TieBreaker string
}

// Order resolves key/order into an ORDER BY expression. Unknown keys fall
// back to DefaultKey; anything but "asc" sorts descending.
func (s SortSpec) Order(key, order string) string {
	col, ok := s.Columns[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		col = s.Columns[s.DefaultKey]
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		dir = "ASC"
	}
	expr := col + " " + dir
	if s.TieBreaker != "" && s.TieBreaker != col {
		expr += ", " + s.TieBreaker + " " + dir
	}
	return expr
}

// likeEscape makes the backslash escaping of ContainsPattern explicit;
// SQLite has no default LIKE escape character.
const likeEscape = ` ESCAPE '\'`

// LikeClause renders "LOWER(col) LIKE ?" for each column, OR-ed together.
func LikeClause(cols ...string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = "LOWER(" + col + ") LIKE ?" + likeEscape
	}
	return strings.Join(parts, " OR ")
}

// repeatArg returns v n times, one per placeholder of a LikeClause.
func repeatArg(v interface{}, n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = v
	}
	return out
}
