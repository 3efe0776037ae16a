package tubestarcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tubestarcmder "github.com/papercomputeco/tubestar/cmd/tubestar"
)

var _ = Describe("NewTubestarCmd", func() {
	It("wires every subcommand", func() {
		cmd := tubestarcmder.NewTubestarCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("init", "ingest", "enrich", "status", "export", "config", "version"))
	})

	It("registers the global flags", func() {
		cmd := tubestarcmder.NewTubestarCmd()
		Expect(cmd.PersistentFlags().ShorthandLookup("d")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("json-logs")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("log-file")).NotTo(BeNil())
	})

	It("loads a .env file from the working directory", func() {
		tmpDir := GinkgoT().TempDir()
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
		})

		GinkgoT().Setenv("TUBESTAR_DOTENV_PROBE", "")
		Expect(os.Unsetenv("TUBESTAR_DOTENV_PROBE")).To(Succeed())
		Expect(os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("TUBESTAR_DOTENV_PROBE=loaded\n"), 0o600)).To(Succeed())

		var out bytes.Buffer
		cmd := tubestarcmder.NewTubestarCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(os.Getenv("TUBESTAR_DOTENV_PROBE")).To(Equal("loaded"))
		Expect(out.String()).To(ContainSubstring("Version:"))
	})

	It("runs without a .env file", func() {
		tmpDir := GinkgoT().TempDir()
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
		})

		cmd := tubestarcmder.NewTubestarCmd()
		cmd.SetOut(GinkgoWriter)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
	})
})
