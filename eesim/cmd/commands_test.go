package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flexee/config"
)

func execute(args ...string) (string, error) {
	out := new(bytes.Buffer)

	rootCmd := newRootCmd()
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

var _ = Describe("Commands", func() {
	It("should compute the CRC of hex strings", func() {
		out, err := execute("crc", "313233343536373839", "0x")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("0x31c3 313233343536373839\n0x0000 0x\n"))
	})

	It("should reject bad hex", func() {
		_, err := execute("crc", "zz")

		Expect(err).To(MatchError(ContainSubstring("invalid hex")))
	})

	It("should check the configuration checksum", func() {
		sum := config.Defaults().Config.ComputeChecksum()

		out, err := execute("crc")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(fmt.Sprintf("0x%04x match\n", sum)))
	})

	It("should not carry arguments or flags into the next command", func() {
		file := filepath.Join(GinkgoT().TempDir(), "eep.env")
		Expect(os.WriteFile(file, []byte(config.KeyChecksum+"=0x1234\n"), 0o600)).
			To(Succeed())

		_, err := execute("crc", "zz")
		Expect(err).To(HaveOccurred())

		out, err := execute("crc", "--env", file)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("stored 0x1234"))

		sum := config.Defaults().Config.ComputeChecksum()
		out, err = execute("crc")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(fmt.Sprintf("0x%04x match\n", sum)))
	})

	It("should spot a stale checksum", func() {
		file := filepath.Join(GinkgoT().TempDir(), "eep.env")
		Expect(os.WriteFile(file, []byte(
			config.KeySlowRead+"=16\n"+config.KeyChecksum+"=0x1234\n"), 0o600)).
			To(Succeed())

		out, err := execute("crc", "--env", file)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("stored 0x1234"))
	})

	It("should save the settings and read them back", func() {
		file := filepath.Join(GinkgoT().TempDir(), "eep.env")

		_, err := execute("env", file)
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("env", "--env", file)
		Expect(err).NotTo(HaveOccurred())

		for _, key := range config.Keys() {
			Expect(out).To(ContainSubstring(key + "="))
		}
	})

	It("should run a script", func() {
		file := filepath.Join(GinkgoT().TempDir(), "jobs.txt")
		Expect(os.WriteFile(file, []byte("write 0 cafe\nread 0 2\n"), 0o600)).
			To(Succeed())

		out, err := execute("run", file)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("cafe"))
		Expect(out).To(ContainSubstring("jobs 2, bytes 4"))
	})

	It("should record the jobs of a script", func() {
		dir := GinkgoT().TempDir()
		file := filepath.Join(dir, "jobs.txt")
		Expect(os.WriteFile(file, []byte("erase 0 8\n"), 0o600)).To(Succeed())

		_, err := execute("run", file, "--db", filepath.Join(dir, "jobs"))

		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Join(dir, "jobs.sqlite3")).To(BeAnExistingFile())
	})

	It("should write a job trace", func() {
		dir := GinkgoT().TempDir()
		file := filepath.Join(dir, "jobs.txt")
		trace := filepath.Join(dir, "trace.jsonl")
		Expect(os.WriteFile(file, []byte("erase 0 8\nread 0 4\n"), 0o600)).
			To(Succeed())

		_, err := execute("run", file, "--trace", trace)
		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(trace)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring(`"kind":"erase"`))
		Expect(lines[1]).To(ContainSubstring(`"kind":"read"`))
	})

	It("should refuse two recorders", func() {
		dir := GinkgoT().TempDir()
		file := filepath.Join(dir, "jobs.txt")
		Expect(os.WriteFile(file, []byte("erase 0 8\n"), 0o600)).To(Succeed())

		_, err := execute("run", file, "--db", filepath.Join(dir, "jobs"),
			"--clickhouse", "clickhouse://localhost:9000")

		Expect(err).To(MatchError(ContainSubstring("cannot be used together")))
		Expect(filepath.Join(dir, "jobs.sqlite3")).NotTo(BeAnExistingFile())
	})

	It("should fail on a missing script", func() {
		_, err := execute("run", "no-such-script")

		Expect(err).To(HaveOccurred())
	})
})
