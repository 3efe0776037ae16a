package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		homeDir string
		cwdDir  string
	)

	BeforeEach(func() {
		homeDir = GinkgoT().TempDir()
		cwdDir = GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", homeDir)
		GinkgoT().Setenv("XDG_DATA_HOME", "")

		origCwd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(cwdDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origCwd)).To(Succeed())
		})
	})

	It("returns the override untouched", func() {
		path, err := ResolveSQLitePath("/tmp/custom.db", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("places the warehouse inside an explicit config dir", func() {
		dir := filepath.Join(cwdDir, "conf")
		path, err := ResolveSQLitePath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, "warehouse.db")))
		Expect(dir).To(BeADirectory())
	})

	It("resolves ~/.tubestar/warehouse.db when present", func() {
		dbPath := filepath.Join(homeDir, ".tubestar", "warehouse.db")
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("prefers a local warehouse over the home one", func() {
		for _, dir := range []string{homeDir, cwdDir} {
			dbPath := filepath.Join(dir, ".tubestar", "warehouse.db")
			Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
			Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())
		}

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		resolvedCwd, err := filepath.EvalSymlinks(cwdDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.EvalSymlinks(path)).To(Equal(filepath.Join(resolvedCwd, ".tubestar", "warehouse.db")))
	})

	It("defaults to the home .tubestar directory on first use", func() {
		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".tubestar", "warehouse.db")))
		Expect(path).NotTo(BeAnExistingFile())
	})
})
