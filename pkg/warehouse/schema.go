package warehouse

import (
	"context"
	"fmt"
	"regexp"

	"entgo.io/ent/dialect"
)

// columnTypes substitutes the backend-specific spellings into the DDL.
type columnTypes struct {
	Serial string
	Float  string
}

func typesFor(backendName string) columnTypes {
	if backendName == dialect.Postgres {
		return columnTypes{Serial: "SERIAL PRIMARY KEY", Float: "DOUBLE PRECISION"}
	}
	return columnTypes{Serial: "INTEGER PRIMARY KEY AUTOINCREMENT", Float: "REAL"}
}

// schemaStatements returns the DDL in dependency order: parents before the
// tables referencing them.
func schemaStatements(backendName string) []string {
	t := typesFor(backendName)
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + TableTime + ` (
	datum DATE PRIMARY KEY
)`,
		`CREATE TABLE IF NOT EXISTS ` + TableChannel + ` (
	channel_id VARCHAR(255) PRIMARY KEY,
	name VARCHAR(255),
	subscribers BIGINT
)`,
		`CREATE TABLE IF NOT EXISTS ` + TableVideo + ` (
	video_id VARCHAR(255) PRIMARY KEY,
	title VARCHAR(255),
	description TEXT,
	url TEXT,
	published_at TIMESTAMP,
	duration INT,
	channel_id VARCHAR(255) REFERENCES ` + TableChannel + `(channel_id)
)`,
		`CREATE TABLE IF NOT EXISTS ` + TableTranscript + ` (
	transcript_id ` + t.Serial + `,
	video_id VARCHAR(255) REFERENCES ` + TableVideo + `(video_id),
	text TEXT,
	start_time ` + t.Float + `,
	duration ` + t.Float + `
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + TableTranscript + `_natural_key
	ON ` + TableTranscript + ` (video_id, start_time, duration)`,
		`CREATE TABLE IF NOT EXISTS ` + TableStatistics + ` (
	stats_id ` + t.Serial + `,
	channel_id VARCHAR(255) REFERENCES ` + TableChannel + `(channel_id),
	batch_id BIGINT,
	video_id VARCHAR(255) REFERENCES ` + TableVideo + `(video_id),
	published_date DATE REFERENCES ` + TableTime + `(datum),
	view_count BIGINT,
	like_count BIGINT,
	comment_count BIGINT,
	retrieved_at TIMESTAMP
)`,
		`CREATE INDEX IF NOT EXISTS ` + TableStatistics + `_video_retrieved
	ON ` + TableStatistics + ` (video_id, retrieved_at)`,
	}
}

// EnsureSchema creates every warehouse table and index that doesn't exist
// yet. It is safe to call on every startup; a failure is fatal to the caller.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.backend.Name()) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &Error{Op: "ensure", Entity: "schema", Err: err}
		}
	}
	return nil
}

// EnsureEnrichmentColumns adds the derived label columns to the Video dimension.
func (s *Store) EnsureEnrichmentColumns(ctx context.Context) error {
	for _, col := range []LabelColumn{SentimentColumn, PopularityColumn} {
		if _, err := s.EnsureLabelColumn(ctx, col); err != nil {
			return err
		}
	}
	return nil
}

// EnsureLabelColumn adds a derived label column to the Video dimension.
func (q *Queries) EnsureLabelColumn(ctx context.Context, column LabelColumn) (bool, error) {
	return q.EnsureColumn(ctx, TableVideo, string(column), labelColumnType)
}

var columnTypeRe = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*(\([0-9]+(,[0-9]+)?\))?$`)

// ColumnExists consults the backend catalog for table.column.
func (q *Queries) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var n int
	query := q.rebind(q.backend.ColumnExistsQuery())
	if err := q.db.QueryRowContext(ctx, query, table, column).Scan(&n); err != nil {
		return false, &Error{Op: "inspect", Entity: "column", ID: table + "." + column, Err: err}
	}
	return n > 0, nil
}

// EnsureColumn adds column to table unless the catalog already lists it.
// Losing a race against a concurrent writer adding the same column is logged
// and treated as success. The returned bool reports whether this call added it.
func (q *Queries) EnsureColumn(ctx context.Context, table, column, sqlType string) (bool, error) {
	if !identifierRe.MatchString(table) || !identifierRe.MatchString(column) {
		return false, fmt.Errorf("%w: %s.%s", ErrInvalidIdentifier, table, column)
	}
	if !columnTypeRe.MatchString(sqlType) {
		return false, fmt.Errorf("%w: column type %q", ErrInvalidIdentifier, sqlType)
	}

	exists, err := q.ColumnExists(ctx, table, column)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, sqlType)
	if _, err := q.db.ExecContext(ctx, stmt); err != nil {
		if q.backend.IsDuplicateColumn(err) {
			q.logger.Info("column already added", "table", table, "column", column, "error", err)
			return false, nil
		}
		return false, &Error{Op: "add", Entity: "column", ID: table + "." + column, Err: err}
	}

	q.logger.Info("added column", "table", table, "column", column, "type", sqlType)
	return true, nil
}
