package receipt

import (
	"io/fs"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage *LocalStorage
	)

	BeforeEach(func() {
		tmpDir = filepath.Join(GinkgoT().TempDir(), "uploads")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create the base directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	Describe("Save", func() {
		var (
			name      string
			savedPath string
			err       error
		)

		BeforeEach(func() {
			name = "0b8e_ticket-marjane.jpg"
		})

		JustBeforeEach(func() {
			savedPath, err = storage.Save(name, []byte("jpeg bytes"))
		})

		When("the name is a plain file name", func() {
			It("should write the file under the base directory", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedPath).To(Equal(name))
				Expect(filepath.Join(tmpDir, name)).To(BeAnExistingFile())
			})
		})

		DescribeTable("rejects names that escape the base directory",
			func(bad string) {
				_, err := storage.Save(bad, []byte("x"))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("invalid file name"))
			},
			Entry("parent reference", "../escape.jpg"),
			Entry("nested path", "sub/dir.jpg"),
			Entry("dot", "."),
			Entry("dot dot", ".."),
			Entry("empty", ""),
		)
	})

	Describe("Get", func() {
		BeforeEach(func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "a.png"), []byte("png bytes"), 0644)).To(Succeed())
		})

		It("should return the stored bytes", func() {
			data, err := storage.Get("a.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("png bytes"))
		})

		It("should fail for a missing file", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("reading file"))
			Expect(err).To(MatchError(fs.ErrNotExist))
		})

		It("should refuse to read outside the base directory", func() {
			_, err := storage.Get("../a.png")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			_, err := storage.Save("b.pdf", []byte("%PDF"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should remove the file", func() {
			Expect(storage.Delete("b.pdf")).To(Succeed())
			Expect(filepath.Join(tmpDir, "b.pdf")).NotTo(BeAnExistingFile())

			_, err := storage.Get("b.pdf")
			Expect(err).To(HaveOccurred())
		})

		It("should fail for a missing file", func() {
			err := storage.Delete("missing.pdf")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("deleting file"))
		})
	})
})
