// Package export writes the warehouse contents to an Excel workbook for
// analysts who work outside the database.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

// Sheet names.
const (
	VideosSheet    = "Videos"
	SnapshotsSheet = "Snapshots"
)

var (
	videoHeader = []any{
		"video_id", "title", "channel_id", "channel", "published_at", "duration_seconds",
		"url", "sentiment", "popularity_rating", "views", "likes", "comments", "retrieved_at",
	}
	snapshotHeader = []any{
		"stats_id", "batch_id", "video_id", "channel_id", "published_date",
		"views", "likes", "comments", "retrieved_at",
	}
)

// Summary counts the rows written per sheet.
type Summary struct {
	Path      string
	Videos    int
	Snapshots int
}

// Workbook builds a workbook with one row per video, joined with its labels
// and latest statistics, and one row per statistics snapshot. The label
// columns are created if missing.
func Workbook(ctx context.Context, store *warehouse.Store) (*excelize.File, *Summary, error) {
	if err := store.EnsureEnrichmentColumns(ctx); err != nil {
		return nil, nil, err
	}

	videos, err := store.VideoReports(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	snapshots, err := store.Snapshots(ctx, "", 0)
	if err != nil {
		return nil, nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), VideosSheet); err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if _, err := f.NewSheet(SnapshotsSheet); err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	videoRows := make([][]any, len(videos))
	for i, v := range videos {
		videoRows[i] = []any{
			v.ID, v.Title, v.ChannelID, v.ChannelName, cellTime(v.PublishedAt), v.DurationSeconds,
			v.URL, v.Sentiment, v.PopularityRating, v.Views, v.Likes, v.Comments, cellTime(v.RetrievedAt),
		}
	}
	snapshotRows := make([][]any, len(snapshots))
	for i, s := range snapshots {
		snapshotRows[i] = []any{
			s.ID, s.BatchID, s.VideoID, s.ChannelID, s.PublishedDate.Format("2006-01-02"),
			s.Views, s.Likes, s.Comments, cellTime(s.RetrievedAt),
		}
	}

	if err := writeSheet(f, VideosSheet, bold, videoHeader, videoRows); err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if err := writeSheet(f, SnapshotsSheet, bold, snapshotHeader, snapshotRows); err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	return f, &Summary{Videos: len(videos), Snapshots: len(snapshots)}, nil
}

// WriteFile builds the workbook and saves it to path.
func WriteFile(ctx context.Context, store *warehouse.Store, path string) (*Summary, error) {
	f, summary, err := Workbook(ctx, store)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("saving workbook %s: %w", path, err)
	}
	summary.Path = path
	return summary, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellTime renders timestamps as RFC 3339 text so they survive spreadsheet
// locale settings. Zero times become empty cells.
func cellTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
