package warehouse

import (
	"context"
	"database/sql"
	"errors"

	entsql "entgo.io/ent/dialect/sql"
)

// UpsertChannel inserts the channel or overwrites its name and subscriber
// count when it already exists.
func (q *Queries) UpsertChannel(ctx context.Context, ch Channel) error {
	query, args := q.builder().Insert(TableChannel).
		Columns("channel_id", "name", "subscribers").
		Values(ch.ID, ch.Name, ch.Subscribers).
		OnConflict(entsql.ConflictColumns("channel_id"), entsql.ResolveWithNewValues()).
		Query()

	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return q.wrap("upsert", "channel", ch.ID, err)
	}
	return nil
}

// UpsertVideo inserts the video or overwrites its descriptive attributes when
// it already exists. Derived label columns are never touched. The channel must
// already be present.
func (q *Queries) UpsertVideo(ctx context.Context, v Video) error {
	query, args := q.builder().Insert(TableVideo).
		Columns("video_id", "title", "description", "url", "published_at", "duration", "channel_id").
		Values(v.ID, v.Title, v.Description, v.URL, v.PublishedAt.UTC(), v.DurationSeconds, v.ChannelID).
		OnConflict(entsql.ConflictColumns("video_id"), entsql.ResolveWithNewValues()).
		Query()

	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return q.wrap("upsert", "video", v.ID, err)
	}
	return nil
}

const insertSegmentSQL = `INSERT INTO ` + TableTranscript + ` (video_id, text, start_time, duration)
VALUES (?, ?, ?, ?)
ON CONFLICT (video_id, start_time, duration) DO NOTHING
RETURNING transcript_id`

// InsertTranscriptSegment stores seg unless a segment with the same
// (video, start, duration) already exists. The check and the insert are one
// statement. It returns the new surrogate id and true, or 0 and false when
// the segment was already present.
func (q *Queries) InsertTranscriptSegment(ctx context.Context, seg TranscriptSegment) (int64, bool, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, q.rebind(insertSegmentSQL),
		seg.VideoID, seg.Text, seg.Start, seg.Duration,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, q.wrap("insert", "transcript segment", seg.VideoID, err)
	}
	return id, true, nil
}

// SetVideoLabel writes a derived label onto an existing video.
func (q *Queries) SetVideoLabel(ctx context.Context, column LabelColumn, videoID, label string) error {
	if !identifierRe.MatchString(string(column)) {
		return ErrInvalidIdentifier
	}

	query, args := q.builder().Update(TableVideo).
		Set(string(column), label).
		Where(entsql.EQ("video_id", videoID)).
		Query()

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return q.wrap("label", "video", videoID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return q.wrap("label", "video", videoID, err)
	}
	if n == 0 {
		return &Error{Op: "label", Entity: "video", ID: videoID, Err: ErrNotFound}
	}
	return nil
}
