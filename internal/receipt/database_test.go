package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-maker/internal/record"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveSession", func() {
		var (
			session *Session
			err     error
		)

		BeforeEach(func() {
			session = &Session{
				ID:         "session-id",
				TemplateID: "template-id",
				Records: []record.PaymentRecord{
					{ReceiptNumber: "1001", Date: "2025-02-14", PayerName: "Ebrahims", Amount: "R2025", Reason: "Feb (R675 Sadia)", PaymentType: record.EFT},
				},
				CreatedAt: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveSession(session)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should save the session with its records", func() {
			saved, getErr := db.GetSession("session-id")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.TemplateID).To(Equal("template-id"))
			Expect(saved.Records).To(Equal(session.Records))
		})

		It("should keep the session after reopening the database", func() {
			Expect(db.Close()).To(Succeed())
			var openErr error
			db, openErr = NewBoltDB(dbPath)
			Expect(openErr).NotTo(HaveOccurred())

			saved, getErr := db.GetSession("session-id")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.Records).To(HaveLen(1))
			Expect(saved.Records[0].PayerName).To(Equal("Ebrahims"))
		})
	})

	Describe("GetSession", func() {
		When("the session does not exist", func() {
			It("returns ErrNotFound", func() {
				_, err := db.GetSession("missing")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("DeleteSession", func() {
		It("should remove the session", func() {
			Expect(db.SaveSession(&Session{ID: "gone"})).To(Succeed())
			Expect(db.DeleteSession("gone")).To(Succeed())
			_, err := db.GetSession("gone")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("templates", func() {
		It("should save and load template metadata", func() {
			template := &Template{ID: "t1", Filename: "t1.png", ContentType: "image/png", Width: 640, Height: 520}
			Expect(db.SaveTemplate(template)).To(Succeed())

			saved, err := db.GetTemplate("t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Filename).To(Equal("t1.png"))
			Expect(saved.Width).To(Equal(640))
		})

		It("returns ErrNotFound for an unknown template", func() {
			_, err := db.GetTemplate("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("NewBoltDB", func() {
		When("the path is not writable", func() {
			It("returns the error", func() {
				_, err := NewBoltDB(filepath.Join(tmpDir, "missing-dir", "test.db"))
				Expect(err).To(MatchError(ContainSubstring("opening boltdb")))
			})
		})
	})
})
