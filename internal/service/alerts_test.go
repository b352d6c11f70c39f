package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

func expiring(licence string, due time.Time) *model.LicenceRecord {
	rec := validRecord(licence)
	rec.ExpiryDate = &due
	return rec
}

func TestEvaluateAlertsWindow(t *testing.T) {
	runDate := day(0)

	t.Run("expiry on the window edge is flagged", func(t *testing.T) {
		current := recordSet(runDate, expiring("A0000000000001X", runDate.AddDate(0, 0, 3)))
		alerts := EvaluateAlerts(current, runDate, 3)
		require.Len(t, alerts.UrgentExpiry, 1)
		assert.Equal(t, 3, alerts.UrgentExpiry[0].DaysLeft)
	})

	t.Run("expiry one day past the window is not flagged", func(t *testing.T) {
		current := recordSet(runDate, expiring("A0000000000001X", runDate.AddDate(0, 0, 4)))
		alerts := EvaluateAlerts(current, runDate, 3)
		assert.Empty(t, alerts.UrgentExpiry)
	})

	t.Run("expiry today is flagged with zero days left", func(t *testing.T) {
		current := recordSet(runDate, expiring("A0000000000001X", runDate))
		alerts := EvaluateAlerts(current, runDate, 3)
		require.Len(t, alerts.UrgentExpiry, 1)
		assert.Equal(t, 0, alerts.UrgentExpiry[0].DaysLeft)
	})

	t.Run("already-past expiry is not an alert", func(t *testing.T) {
		current := recordSet(runDate, expiring("A0000000000001X", runDate.AddDate(0, 0, -1)))
		alerts := EvaluateAlerts(current, runDate, 3)
		assert.Empty(t, alerts.UrgentExpiry)
	})

	t.Run("no expiry date, no alert", func(t *testing.T) {
		current := recordSet(runDate, validRecord("A0000000000001X"))
		alerts := EvaluateAlerts(current, runDate, 3)
		assert.True(t, alerts.Empty())
	})

	t.Run("zero window falls back to the default", func(t *testing.T) {
		alerts := EvaluateAlerts(recordSet(runDate), runDate, 0)
		assert.Equal(t, DefaultUrgentWindowDays, alerts.WindowDays)
	})
}

func TestEvaluateAlertsMedical(t *testing.T) {
	runDate := day(0)
	due := runDate.AddDate(0, 0, 2)

	rec := validRecord("A0000000000001X")
	rec.MedicalDue = &due

	alerts := EvaluateAlerts(recordSet(runDate, rec), runDate, 3)
	assert.Empty(t, alerts.UrgentExpiry)
	require.Len(t, alerts.MedicalDue, 1)
	assert.Equal(t, 2, alerts.MedicalDue[0].DaysLeft)
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	lateRun := time.Date(2026, 1, 10, 23, 59, 0, 0, time.Local)
	earlyDue := time.Date(2026, 1, 13, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysUntil(lateRun, earlyDue))

	assert.Equal(t, -2, DaysUntil(day(0), day(-2)))
}
