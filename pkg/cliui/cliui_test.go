package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/tubestar/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints a success line and returns nil", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Creating schema", false, func() error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Creating schema"))
		Expect(buf.String()).To(ContainSubstring("✓"))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("returns the error and prints a failure mark", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := cliui.Step(&buf, "Connecting", false, func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("✗"))
	})

	It("stops animating before printing the result", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Working", true, func() error {
			time.Sleep(100 * time.Millisecond)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		plain := ansi.Strip(buf.String())
		Expect(plain).To(HaveSuffix(")\n"))
		Expect(plain).To(MatchRegexp(`✓ Working \(\d+(ms|\.\ds)\)\n$`))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds below a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds above a second", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("MarkdownCell", func() {
	It("flattens whitespace and escapes pipes", func() {
		Expect(cliui.MarkdownCell("a |\n b", 0)).To(Equal(`a \| b`))
	})

	It("truncates to the given width", func() {
		Expect(cliui.MarkdownCell("abcdefghij", 5)).To(Equal("abcd…"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders headings", func() {
		out, err := cliui.RenderMarkdown("# Warehouse\n\nhello")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Warehouse"))
		Expect(out).To(ContainSubstring("hello"))
	})
})
