package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

func emptyReport(runDate time.Time) *DailyReport {
	return &DailyReport{
		RunDate:     runDate,
		GeneratedAt: runDate,
		Current:     recordSet(runDate),
		Changes:     &model.ChangeSet{},
		Alerts:      &model.ExpiryAlertSet{RunDate: runDate, WindowDays: 3},
	}
}

func TestReportSubject(t *testing.T) {
	runDate := day(0)

	t.Run("routine day", func(t *testing.T) {
		rep := emptyReport(runDate)
		assert.Equal(t, "Driver Licence Change Report – 2026-01-10", rep.Subject())
	})

	t.Run("suspension promotes the subject", func(t *testing.T) {
		rep := emptyReport(runDate)
		rep.Changes.StatusChanged = []model.StatusChange{
			{LicenceNumber: "A0000000000001X", Old: model.StatusValid, New: model.StatusSuspended},
		}
		assert.True(t, strings.HasPrefix(rep.Subject(), "**DRIVER SUSPENDED** "))
	})

	t.Run("unreachable loader flags the subject", func(t *testing.T) {
		rep := emptyReport(runDate)
		rep.LoaderAddr = "loader.local:2000"
		rep.LoaderOnline = false
		assert.True(t, strings.HasSuffix(rep.Subject(), " [SERVER DOWN]"))
	})
}

func TestRenderHTMLZeroChanges(t *testing.T) {
	rep := emptyReport(day(0))

	html, err := RenderHTML(rep)
	require.NoError(t, err)
	assert.Contains(t, html, "NONE", "a run with nothing to report still renders a body")
	assert.Contains(t, html, "2026-01-10")
}

func TestRenderHTMLEnrichment(t *testing.T) {
	runDate := day(0)
	rec := validRecord("A0000000000001X")
	rec.Status = model.StatusSuspended
	rec.StatusDetail = "LICENCE SUSPENDED"

	rep := emptyReport(runDate)
	rep.Current = recordSet(runDate, rec)
	rep.Changes.StatusChanged = []model.StatusChange{{
		LicenceNumber: "A0000000000001X",
		Old:           model.StatusValid,
		New:           model.StatusSuspended,
		OldDetail:     "LICENCED",
		NewDetail:     "LICENCE SUSPENDED",
	}}
	rep.Roster = model.NewRoster([]model.Operator{{
		OperatorID:     "4411",
		Name:           "DOE, JANE",
		DepartmentID:   "77",
		DepartmentName: "TRANSIT",
		LicenceNumber:  "A0000000000001X",
	}})

	html, err := RenderHTML(rep)
	require.NoError(t, err)
	assert.Contains(t, html, "DOE, JANE (ID: 4411)")
	assert.Contains(t, html, "TRANSIT (ID: 77)")
	assert.Contains(t, html, "A0000-00000-0001X", "licence numbers render in dashed display form")
	assert.Contains(t, html, "LICENCED → LICENCE SUSPENDED")
}

func TestReportRowsFallbacks(t *testing.T) {
	runDate := day(0)
	rep := emptyReport(runDate)
	rep.Current = recordSet(runDate, validRecord("A0000000000001X"))
	rep.Changes.Added = []string{"A0000000000001X"}

	rows := rep.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "NEW OPERATOR", rows[0].Category)
	assert.Equal(t, "DOE, JANE", rows[0].OperatorName, "parsed name fills in when roster has no entry")
	assert.Equal(t, "UNKNOWN", rows[0].OperatorID)
	assert.Equal(t, "NONE", rows[0].Comments)
}

func TestExpiryPhrase(t *testing.T) {
	due := day(0)
	assert.Equal(t, "EXPIRES TODAY (Due: 2026-01-10)", ExpiryPhrase(0, due))
	assert.Equal(t, "APPROACHING IN 2 DAYS (Due: 2026-01-10)", ExpiryPhrase(2, due))
	assert.Equal(t, "EXPIRED 5 DAYS AGO (Due: 2026-01-10)", ExpiryPhrase(-5, due))
}

func TestRenderNotices(t *testing.T) {
	runDate := day(0)

	t.Run("nil roster yields no notices", func(t *testing.T) {
		rep := emptyReport(runDate)
		rep.Changes.StatusChanged = []model.StatusChange{{LicenceNumber: "A0000000000001X"}}
		notices, err := RenderNotices(rep)
		require.NoError(t, err)
		assert.Empty(t, notices)
	})

	t.Run("added and removed operators are not notified", func(t *testing.T) {
		rep := emptyReport(runDate)
		rep.Current = recordSet(runDate, validRecord("A0000000000001X"))
		rep.Changes.Added = []string{"A0000000000001X"}
		rep.Roster = model.NewRoster([]model.Operator{{
			OperatorID: "4411", Name: "DOE, JANE", LicenceNumber: "A0000000000001X",
		}})

		notices, err := RenderNotices(rep)
		require.NoError(t, err)
		assert.Empty(t, notices)
	})

	t.Run("rostered operator with a change gets one notice", func(t *testing.T) {
		rep := emptyReport(runDate)
		rep.Current = recordSet(runDate, validRecord("A0000000000001X"))
		rep.Changes.StatusChanged = []model.StatusChange{{
			LicenceNumber: "A0000000000001X",
			OldDetail:     "LICENCED",
			NewDetail:     "LICENCE SUSPENDED",
		}}
		rep.Roster = model.NewRoster([]model.Operator{{
			OperatorID: "4411", Name: "DOE, JANE", LicenceNumber: "A0000000000001X",
		}})

		notices, err := RenderNotices(rep)
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, "4411", notices[0].Operator.OperatorID)
		assert.Contains(t, notices[0].Subject, "STATUS")
		assert.Contains(t, notices[0].HTML, "LICENCE SUSPENDED")
	})
}
