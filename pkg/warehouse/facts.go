package warehouse

import (
	"context"
	"time"

	"github.com/papercomputeco/tubestar/pkg/timedim"
)

const appendStatisticsSQL = `INSERT INTO ` + TableStatistics + `
(channel_id, batch_id, video_id, published_date, view_count, like_count, comment_count, retrieved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING stats_id`

// AppendStatistics records one engagement snapshot. Facts are never
// deduplicated or updated: every call adds a row.
func (q *Queries) AppendStatistics(ctx context.Context, s StatisticsSnapshot) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, q.rebind(appendStatisticsSQL),
		s.ChannelID,
		s.BatchID,
		s.VideoID,
		timedim.Format(s.PublishedDate),
		s.Views,
		s.Likes,
		s.Comments,
		s.RetrievedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, q.wrap("append", "statistics", s.VideoID, err)
	}
	return id, nil
}

// NextBatchID derives the batch id for a run started at now: its Unix time
// in seconds, bumped past the highest id already recorded so that ids keep
// increasing across runs started within the same second.
func (q *Queries) NextBatchID(ctx context.Context, now time.Time) (int64, error) {
	var highest int64
	query := `SELECT COALESCE(MAX(batch_id), 0) FROM ` + TableStatistics
	if err := q.db.QueryRowContext(ctx, query).Scan(&highest); err != nil {
		return 0, &Error{Op: "derive", Entity: "batch id", Err: err}
	}

	id := now.Unix()
	if id <= highest {
		id = highest + 1
	}
	return id, nil
}
