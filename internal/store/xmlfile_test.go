package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

type XMLFileStoreSuite struct {
	suite.Suite
	store *XMLFileStore
	ctx   context.Context
	date  time.Time
}

func TestXMLFileStoreSuite(t *testing.T) {
	suite.Run(t, new(XMLFileStoreSuite))
}

func (s *XMLFileStoreSuite) SetupTest() {
	store, err := NewXMLFileStore(s.T().TempDir())
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
	s.date = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
}

func (s *XMLFileStoreSuite) TestRoundTrip() {
	expiry := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	medical := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	set := model.NewRecordSet(s.date)
	set.Add(&model.LicenceRecord{
		LicenceNumber: "A1234567890123X",
		Name:          "DOE, JANE",
		Classes:       []string{"D", "Z"},
		Status:        model.StatusValid,
		StatusDetail:  "LICENCED",
		ExpiryDate:    &expiry,
		MedicalDue:    &medical,
		Comments:      "CORRECTIVE LENSES",
	})
	set.Add(&model.LicenceRecord{
		LicenceNumber: "B1234567890123X",
		Name:          "ROE, RICK",
		Status:        model.StatusSuspended,
		StatusDetail:  "LICENCE SUSPENDED",
	})

	s.Require().NoError(s.store.Write(s.ctx, set))

	got, err := s.store.Read(s.ctx, s.date)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(2, got.Len())

	rec := got.Get("A1234567890123X")
	s.Require().NotNil(rec, "display dashes must normalize back to the canonical key")
	s.Equal("DOE, JANE", rec.Name)
	s.Equal([]string{"D", "Z"}, rec.Classes)
	s.Equal(model.StatusValid, rec.Status)
	s.Equal("LICENCED", rec.StatusDetail)
	s.Require().NotNil(rec.ExpiryDate)
	s.True(expiry.Equal(*rec.ExpiryDate))
	s.Require().NotNil(rec.MedicalDue)
	s.Equal("CORRECTIVE LENSES", rec.Comments)

	s.Equal(model.StatusSuspended, got.Get("B1234567890123X").Status)
}

func (s *XMLFileStoreSuite) TestReadMissingDateIsNil() {
	got, err := s.store.Read(s.ctx, s.date)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *XMLFileStoreSuite) TestDatesNewestFirst() {
	for _, d := range []int{9, 11, 10} {
		set := model.NewRecordSet(time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC))
		s.Require().NoError(s.store.Write(s.ctx, set))
	}

	dates, err := s.store.Dates(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(dates, 3)
	s.Equal(11, dates[0].Day())
	s.Equal(9, dates[2].Day())
}

func (s *XMLFileStoreSuite) TestPrune() {
	now := time.Now()

	s.Require().NoError(s.store.Write(s.ctx, model.NewRecordSet(s.date)))
	old := s.store.path(s.date)
	s.Require().NoError(os.Chtimes(old, now.Add(-72*time.Hour), now.Add(-72*time.Hour)))

	fresh := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Write(s.ctx, model.NewRecordSet(fresh)))

	unrelated := filepath.Join(s.store.Dir, "notes.txt")
	s.Require().NoError(os.WriteFile(unrelated, []byte("x"), 0o644))
	s.Require().NoError(os.Chtimes(unrelated, now.Add(-72*time.Hour), now.Add(-72*time.Hour)))

	s.Require().NoError(s.store.Prune(now, 48*time.Hour))

	s.NoFileExists(old)
	s.FileExists(s.store.path(fresh))
	s.FileExists(unrelated, "only snapshot files are pruned")
}
