package warehouse

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/tubestar/pkg/timedim"
)

// InsertDate adds the calendar date of d to the time dimension. An existing
// row is left untouched; the bool reports whether a row was created.
func (q *Queries) InsertDate(ctx context.Context, d time.Time) (bool, error) {
	datum := timedim.Format(d)
	query, args := q.builder().Insert(TableTime).
		Columns("datum").
		Values(datum).
		OnConflict(entsql.ConflictColumns("datum"), entsql.DoNothing()).
		Query()

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, q.wrap("insert", "date", datum, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, q.wrap("insert", "date", datum, err)
	}
	return n > 0, nil
}

// InsertYears fills the time dimension with every date from January 1 of
// startYear through December 31 of endYear in one transaction. It returns the
// number of dates that were not present before.
func (s *Store) InsertYears(ctx context.Context, startYear, endYear int) (int, error) {
	inserted := 0
	err := s.WithTx(ctx, func(tx *Tx) error {
		for _, d := range timedim.GenerateDates(startYear, endYear) {
			ok, err := tx.InsertDate(ctx, d)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("time dimension populated",
		"start_year", startYear,
		"end_year", endYear,
		"inserted", inserted,
	)
	return inserted, nil
}
