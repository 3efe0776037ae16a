package warehouse

import (
	"strconv"
	"strings"

	"entgo.io/ent/dialect"
)

// Backend captures what differs between the SQL engines the warehouse runs
// on. Implementations live in the postgres and sqlite subpackages.
type Backend interface {
	// Name is the ent dialect name (dialect.Postgres or dialect.SQLite).
	Name() string

	// ColumnExistsQuery returns a query taking (table, column) placeholders
	// and yielding a single count of matching catalog rows.
	ColumnExistsQuery() string

	// IsForeignKeyViolation reports whether err is a referential integrity failure.
	IsForeignKeyViolation(err error) bool

	// IsDuplicateColumn reports whether err came from adding a column that
	// already exists.
	IsDuplicateColumn(err error) bool
}

// rebind rewrites '?' placeholders into the backend's native form. Queries
// passed here must not contain literal question marks.
func rebind(backendName, query string) string {
	if backendName != dialect.Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
