package export_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/papercomputeco/tubestar/pkg/export"
	"github.com/papercomputeco/tubestar/pkg/logger"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
	"github.com/papercomputeco/tubestar/pkg/warehouse/sqlite"
)

var _ = Describe("WriteFile", func() {
	var (
		ctx   context.Context
		store *warehouse.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = sqlite.NewStore(sqlite.InMemory, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)
		Expect(store.EnsureSchema(ctx)).To(Succeed())
	})

	It("writes an empty workbook with headers", func() {
		path := filepath.Join(GinkgoT().TempDir(), "empty.xlsx")
		summary, err := export.WriteFile(ctx, store, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Videos).To(BeZero())
		Expect(summary.Snapshots).To(BeZero())

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		Expect(f.GetSheetList()).To(Equal([]string{"Videos", "Snapshots"}))

		rows, err := f.GetRows("Videos")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0][0]).To(Equal("video_id"))
	})

	It("exports videos with labels and every snapshot", func() {
		published := time.Date(2023, time.June, 1, 8, 0, 0, 0, time.UTC)
		Expect(store.UpsertChannel(ctx, warehouse.Channel{ID: "UC1", Name: "Kanaal", Subscribers: 5})).To(Succeed())
		Expect(store.UpsertVideo(ctx, warehouse.Video{
			ID: "abc123", Title: "Hallo", URL: "https://www.youtube.com/watch?v=abc123",
			PublishedAt: published, DurationSeconds: 90, ChannelID: "UC1",
		})).To(Succeed())
		_, err := store.InsertDate(ctx, published)
		Expect(err).NotTo(HaveOccurred())
		for i, views := range []int64{10, 20} {
			_, err := store.AppendStatistics(ctx, warehouse.StatisticsSnapshot{
				ChannelID: "UC1", BatchID: int64(i + 1), VideoID: "abc123", PublishedDate: published,
				Views: views, RetrievedAt: published.Add(time.Duration(i+1) * time.Hour),
			})
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(store.EnsureEnrichmentColumns(ctx)).To(Succeed())
		Expect(store.SetVideoLabel(ctx, warehouse.PopularityColumn, "abc123", "populair")).To(Succeed())

		path := filepath.Join(GinkgoT().TempDir(), "warehouse.xlsx")
		summary, err := export.WriteFile(ctx, store, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Path).To(Equal(path))
		Expect(summary.Videos).To(Equal(1))
		Expect(summary.Snapshots).To(Equal(2))

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		videos, err := f.GetRows("Videos")
		Expect(err).NotTo(HaveOccurred())
		Expect(videos).To(HaveLen(2))
		row := videos[1]
		Expect(row[0]).To(Equal("abc123"))
		Expect(row[3]).To(Equal("Kanaal"))
		Expect(row[8]).To(Equal("populair"))
		Expect(row[9]).To(Equal("20"))

		snapshots, err := f.GetRows("Snapshots")
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshots).To(HaveLen(3))
		Expect(snapshots[1][4]).To(Equal("2023-06-01"))
	})
})
