package repository

import (
	"fmt"
	"strings"
)

// filter accumulates AND-ed predicates with positional arguments. Each
// predicate uses "?" as the placeholder for its single argument; a predicate
// may reference the argument more than once.
type filter struct {
	conds []string
	args  []interface{}
}

// add appends pred bound to arg.
func (f *filter) add(pred string, arg interface{}) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(pred, "?", fmt.Sprintf("$%d", len(f.args))))
}

// contains adds a case-insensitive substring match across columns.
func (f *filter) contains(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	ors := make([]string, len(columns))
	for i, col := range columns {
		ors[i] = "LOWER(" + col + ") LIKE ?"
	}
	f.add("("+strings.Join(ors, " OR ")+")", "%"+strings.ToLower(term)+"%")
}

// where renders " WHERE ..." or the empty string.
func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page renders LIMIT/OFFSET for a 1-based page; sizes outside 1..100 fall
// back to 20.
func page(number, size int) string {
	if number < 1 {
		number = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, (number-1)*size)
}

// orderBy renders an ORDER BY clause from caller input restricted to allowed
// columns, falling back to def and DESC.
func orderBy(column, direction string, allowed []string, def string) string {
	col := def
	for _, a := range allowed {
		if a == column {
			col = column
			break
		}
	}
	dir := strings.ToUpper(direction)
	if dir != "ASC" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}
