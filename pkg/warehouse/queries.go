package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SentimentCandidates returns the ids of videos that have transcript text.
// Unless relabel is set, videos that already carry a sentiment are skipped.
// The sentiment column must exist.
func (q *Queries) SentimentCandidates(ctx context.Context, relabel bool) ([]string, error) {
	query := `SELECT DISTINCT t.video_id
FROM ` + TableTranscript + ` t
JOIN ` + TableVideo + ` v ON v.video_id = t.video_id`
	if !relabel {
		query += "\nWHERE v." + string(SentimentColumn) + " IS NULL"
	}
	query += "\nORDER BY t.video_id"

	return q.queryStrings(ctx, "sentiment candidates", query)
}

// TranscriptText returns every transcript segment of a video ordered by
// start time, joined with single spaces.
func (q *Queries) TranscriptText(ctx context.Context, videoID string) (string, error) {
	query := q.rebind(`SELECT text FROM ` + TableTranscript + `
WHERE video_id = ?
ORDER BY start_time, transcript_id`)

	rows, err := q.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return "", q.wrap("read", "transcript", videoID, err)
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var text sql.NullString
		if err := rows.Scan(&text); err != nil {
			return "", q.wrap("read", "transcript", videoID, err)
		}
		if text.Valid && text.String != "" {
			parts = append(parts, text.String)
		}
	}
	if err := rows.Err(); err != nil {
		return "", q.wrap("read", "transcript", videoID, err)
	}
	if len(parts) == 0 {
		return "", &Error{Op: "read", Entity: "transcript", ID: videoID, Err: ErrNotFound}
	}
	return strings.Join(parts, " "), nil
}

// LatestStatistics returns the most recent snapshot of a video by
// retrieval time, joined with the video's duration.
func (q *Queries) LatestStatistics(ctx context.Context, videoID string) (*VideoStatistics, error) {
	query := q.rebind(`SELECT s.video_id, s.view_count, s.like_count, s.comment_count, v.duration, s.retrieved_at
FROM ` + TableStatistics + ` s
JOIN ` + TableVideo + ` v ON v.video_id = s.video_id
WHERE s.video_id = ?
ORDER BY s.retrieved_at DESC, s.stats_id DESC
LIMIT 1`)

	var (
		st       VideoStatistics
		duration sql.NullInt64
	)
	err := q.db.QueryRowContext(ctx, query, videoID).Scan(
		&st.VideoID, &st.Views, &st.Likes, &st.Comments, &duration, &st.RetrievedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Op: "read", Entity: "statistics", ID: videoID, Err: ErrNotFound}
	}
	if err != nil {
		return nil, q.wrap("read", "statistics", videoID, err)
	}
	st.DurationSeconds = duration.Int64
	return &st, nil
}

// GetChannel returns a channel by id.
func (q *Queries) GetChannel(ctx context.Context, id string) (*Channel, error) {
	query := q.rebind(`SELECT channel_id, name, subscribers FROM ` + TableChannel + ` WHERE channel_id = ?`)

	var (
		ch          Channel
		name        sql.NullString
		subscribers sql.NullInt64
	)
	err := q.db.QueryRowContext(ctx, query, id).Scan(&ch.ID, &name, &subscribers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Op: "get", Entity: "channel", ID: id, Err: ErrNotFound}
	}
	if err != nil {
		return nil, q.wrap("get", "channel", id, err)
	}
	ch.Name = name.String
	ch.Subscribers = subscribers.Int64
	return &ch, nil
}

// GetVideo returns a video by id without its derived labels.
func (q *Queries) GetVideo(ctx context.Context, id string) (*Video, error) {
	query := q.rebind(`SELECT video_id, title, description, url, published_at, duration, channel_id
FROM ` + TableVideo + ` WHERE video_id = ?`)

	var (
		v           Video
		title, desc sql.NullString
		url, chID   sql.NullString
		published   sql.NullTime
		duration    sql.NullInt64
	)
	err := q.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &title, &desc, &url, &published, &duration, &chID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Op: "get", Entity: "video", ID: id, Err: ErrNotFound}
	}
	if err != nil {
		return nil, q.wrap("get", "video", id, err)
	}
	v.Title = title.String
	v.Description = desc.String
	v.URL = url.String
	v.PublishedAt = published.Time
	v.DurationSeconds = duration.Int64
	v.ChannelID = chID.String
	return &v, nil
}

// VideoLabel returns the derived label of a video, or "" when unset.
func (q *Queries) VideoLabel(ctx context.Context, column LabelColumn, videoID string) (string, error) {
	if !identifierRe.MatchString(string(column)) {
		return "", ErrInvalidIdentifier
	}
	query := q.rebind(`SELECT ` + string(column) + ` FROM ` + TableVideo + ` WHERE video_id = ?`)

	var label sql.NullString
	err := q.db.QueryRowContext(ctx, query, videoID).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &Error{Op: "get", Entity: "video", ID: videoID, Err: ErrNotFound}
	}
	if err != nil {
		return "", q.wrap("get", "video label", videoID, err)
	}
	return label.String, nil
}

// TranscriptSegments returns the stored segments of a video ordered by start.
func (q *Queries) TranscriptSegments(ctx context.Context, videoID string) ([]TranscriptSegment, error) {
	query := q.rebind(`SELECT transcript_id, video_id, text, start_time, duration
FROM ` + TableTranscript + `
WHERE video_id = ?
ORDER BY start_time, transcript_id`)

	rows, err := q.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, q.wrap("list", "transcript segments", videoID, err)
	}
	defer rows.Close()

	var segs []TranscriptSegment
	for rows.Next() {
		var (
			seg  TranscriptSegment
			text sql.NullString
		)
		if err := rows.Scan(&seg.ID, &seg.VideoID, &text, &seg.Start, &seg.Duration); err != nil {
			return nil, q.wrap("list", "transcript segments", videoID, err)
		}
		seg.Text = text.String
		segs = append(segs, seg)
	}
	return segs, rows.Err()
}

// Snapshots returns statistics facts, newest first. A positive limit caps
// the number of rows; an empty videoID selects every video.
func (q *Queries) Snapshots(ctx context.Context, videoID string, limit int) ([]StatisticsSnapshot, error) {
	query := `SELECT stats_id, channel_id, batch_id, video_id, published_date,
	view_count, like_count, comment_count, retrieved_at
FROM ` + TableStatistics
	var args []any
	if videoID != "" {
		query += "\nWHERE video_id = ?"
		args = append(args, videoID)
	}
	query += "\nORDER BY retrieved_at DESC, stats_id DESC"
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d", limit)
	}

	rows, err := q.db.QueryContext(ctx, q.rebind(query), args...)
	if err != nil {
		return nil, q.wrap("list", "statistics", videoID, err)
	}
	defer rows.Close()

	var out []StatisticsSnapshot
	for rows.Next() {
		var s StatisticsSnapshot
		if err := rows.Scan(
			&s.ID, &s.ChannelID, &s.BatchID, &s.VideoID, &s.PublishedDate,
			&s.Views, &s.Likes, &s.Comments, &s.RetrievedAt,
		); err != nil {
			return nil, q.wrap("list", "statistics", videoID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Counts returns the number of rows in every warehouse table.
func (q *Queries) Counts(ctx context.Context) (*TableCounts, error) {
	c := &TableCounts{}
	targets := []struct {
		table string
		dst   *int64
	}{
		{TableTime, &c.Dates},
		{TableChannel, &c.Channels},
		{TableVideo, &c.Videos},
		{TableTranscript, &c.Transcripts},
		{TableStatistics, &c.Snapshots},
	}
	for _, t := range targets {
		if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return nil, &Error{Op: "count", Entity: t.table, Err: err}
		}
	}
	return c, nil
}

// LatestBatch returns the highest batch id recorded, or 0 when no facts exist.
func (q *Queries) LatestBatch(ctx context.Context) (int64, error) {
	var id int64
	query := `SELECT COALESCE(MAX(batch_id), 0) FROM ` + TableStatistics
	if err := q.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, &Error{Op: "read", Entity: "batch id", Err: err}
	}
	return id, nil
}

// LabelDistribution counts videos per value of a derived label column.
// Videos without a label are counted under the empty string.
func (q *Queries) LabelDistribution(ctx context.Context, column LabelColumn) (map[string]int64, error) {
	if !identifierRe.MatchString(string(column)) {
		return nil, ErrInvalidIdentifier
	}
	col := string(column)
	query := `SELECT ` + col + `, COUNT(*) FROM ` + TableVideo + ` GROUP BY ` + col

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &Error{Op: "count", Entity: col, Err: err}
	}
	defer rows.Close()

	dist := make(map[string]int64)
	for rows.Next() {
		var (
			label sql.NullString
			n     int64
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, &Error{Op: "count", Entity: col, Err: err}
		}
		dist[label.String] += n
	}
	return dist, rows.Err()
}

// VideoReports returns every video with its channel name, derived labels and
// latest statistics, most recently published first. The label columns must
// exist. A positive limit caps the number of rows.
func (q *Queries) VideoReports(ctx context.Context, limit int) ([]VideoReport, error) {
	query := `SELECT v.video_id, v.title, v.description, v.url, v.published_at, v.duration, v.channel_id,
	c.name, v.` + string(SentimentColumn) + `, v.` + string(PopularityColumn) + `,
	s.view_count, s.like_count, s.comment_count, s.retrieved_at
FROM ` + TableVideo + ` v
LEFT JOIN ` + TableChannel + ` c ON c.channel_id = v.channel_id
LEFT JOIN ` + TableStatistics + ` s ON s.stats_id = (
	SELECT s2.stats_id FROM ` + TableStatistics + ` s2
	WHERE s2.video_id = v.video_id
	ORDER BY s2.retrieved_at DESC, s2.stats_id DESC
	LIMIT 1
)
ORDER BY v.published_at DESC, v.video_id`
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d", limit)
	}

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &Error{Op: "list", Entity: "video reports", Err: err}
	}
	defer rows.Close()

	var out []VideoReport
	for rows.Next() {
		var (
			r                          VideoReport
			title, desc, url, chID     sql.NullString
			chName, sentiment, popular sql.NullString
			published, retrieved       sql.NullTime
			duration                   sql.NullInt64
			views, likes, comments     sql.NullInt64
		)
		if err := rows.Scan(
			&r.ID, &title, &desc, &url, &published, &duration, &chID,
			&chName, &sentiment, &popular,
			&views, &likes, &comments, &retrieved,
		); err != nil {
			return nil, &Error{Op: "list", Entity: "video reports", Err: err}
		}
		r.Title = title.String
		r.Description = desc.String
		r.URL = url.String
		r.PublishedAt = published.Time
		r.DurationSeconds = duration.Int64
		r.ChannelID = chID.String
		r.ChannelName = chName.String
		r.Sentiment = sentiment.String
		r.PopularityRating = popular.String
		r.Views = views.Int64
		r.Likes = likes.Int64
		r.Comments = comments.Int64
		r.RetrievedAt = retrieved.Time
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) queryStrings(ctx context.Context, entity, query string, args ...any) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(query), args...)
	if err != nil {
		return nil, &Error{Op: "list", Entity: entity, Err: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, &Error{Op: "list", Entity: entity, Err: err}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list", Entity: entity, Err: err}
	}
	return out, nil
}
