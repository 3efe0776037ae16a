package statuscmder_test

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	statuscmder "github.com/papercomputeco/tubestar/cmd/tubestar/status"
	"github.com/papercomputeco/tubestar/pkg/logger"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
	"github.com/papercomputeco/tubestar/pkg/warehouse/sqlite"
)

var _ = Describe("NewStatusCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := statuscmder.NewStatusCmd()
		Expect(cmd.Use).To(Equal("status"))
		Expect(cmd.Flags().Lookup("limit").DefValue).To(Equal("10"))
	})

	It("rejects any arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})
})

var _ = Describe("Status command execution", func() {
	var (
		ctx    context.Context
		tmpDir string
		dbPath string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := statuscmder.NewStatusCmd()
		cmd.Flags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetErr(GinkgoWriter)
		cmd.SetArgs(append([]string{"--config-dir", tmpDir, "--sqlite", dbPath}, args...))
		return cmd.Execute()
	}

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "w.db")
		out = &bytes.Buffer{}
		GinkgoT().Setenv("HOME", tmpDir)
	})

	It("reports an empty warehouse", func() {
		Expect(run()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("| video_dimension | 0 |"))
		Expect(out.String()).To(ContainSubstring("No ingestion batches yet."))
		Expect(out.String()).To(ContainSubstring("No videos ingested yet."))
	})

	It("lists counts, labels and recent videos", func() {
		published := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
		retrieved := time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC)

		store, err := sqlite.NewStore(dbPath, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(store.EnsureSchema(ctx)).To(Succeed())
		Expect(store.EnsureEnrichmentColumns(ctx)).To(Succeed())
		_, err = store.InsertDate(ctx, published)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.UpsertChannel(ctx, warehouse.Channel{ID: "UC1", Name: "Pipes | Tubes", Subscribers: 5})).To(Succeed())
		Expect(store.UpsertVideo(ctx, warehouse.Video{
			ID: "abc123", Title: "A  very\nlong title", URL: "https://www.youtube.com/watch?v=abc123",
			PublishedAt: published, DurationSeconds: 90, ChannelID: "UC1",
		})).To(Succeed())
		_, err = store.AppendStatistics(ctx, warehouse.StatisticsSnapshot{
			ChannelID: "UC1", BatchID: retrieved.Unix(), VideoID: "abc123", PublishedDate: published,
			Views: 10000, Likes: 900, Comments: 80, RetrievedAt: retrieved,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.SetVideoLabel(ctx, warehouse.PopularityColumn, "abc123", "populair")).To(Succeed())
		Expect(store.Close()).To(Succeed())

		Expect(run()).To(Succeed())
		report := out.String()
		Expect(report).To(ContainSubstring("| video_dimension | 1 |"))
		Expect(report).To(ContainSubstring("| statistics_fact | 1 |"))
		Expect(report).To(ContainSubstring("Latest batch: `1714636800`"))
		Expect(report).To(ContainSubstring("| populair | 1 |"))
		Expect(report).To(ContainSubstring("| _unlabelled_ | 1 |"))
		Expect(report).To(ContainSubstring("| `abc123` | A very long title | Pipes \\| Tubes | 2024-05-01 | 10000 | 900 | 80 | - | populair |"))
	})
})
