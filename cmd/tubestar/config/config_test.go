package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/tubestar/cmd/tubestar/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(GinkgoWriter)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
		GinkgoT().Setenv("HOME", tmpDir)

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .tubestar dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".tubestar"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
		})
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(run("set", "database.driver", "sqlite")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".tubestar", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`driver = "sqlite"`))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "database.driver")).NotTo(Succeed())
			Expect(run("set")).NotTo(Succeed())
		})

		It("rejects invalid values", func() {
			Expect(run("set", "database.port", "not-a-number")).NotTo(Succeed())
			Expect(run("set", "database.driver", "oracle")).NotTo(Succeed())
			Expect(run("set", "cache.ttl", "forever")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(run("set", "youtube.channel_id", "UCabc")).To(Succeed())
			out.Reset()

			Expect(run("get", "youtube.channel_id")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("UCabc"))
		})

		It("shows defaults when nothing is set", func() {
			Expect(run("get", "database.port")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("5432"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "server.provider")).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("list subcommand", func() {
		It("lists every key and redacts secrets", func() {
			Expect(run("set", "youtube.api_key", "super-secret")).To(Succeed())
			Expect(run("set", "youtube.transcript_languages", "en,nl")).To(Succeed())
			out.Reset()

			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("database.driver"))
			Expect(out.String()).To(ContainSubstring("metrics.textfile"))
			Expect(out.String()).To(ContainSubstring("<redacted>"))
			Expect(out.String()).To(ContainSubstring(`"en,nl"`))
			Expect(out.String()).NotTo(ContainSubstring("super-secret"))
		})
	})

	It("honours --config-dir", func() {
		other := filepath.Join(tmpDir, "elsewhere")
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetArgs([]string{"set", "ingest.volume_path", "/media", "--config-dir", other})
		Expect(cmd.Execute()).To(Succeed())
		Expect(filepath.Join(other, "config.toml")).To(BeAnExistingFile())
	})
})
