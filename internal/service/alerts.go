package service

import (
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// DefaultUrgentWindowDays is the day-count threshold within which an expiry
// or medical-due date triggers an alert.
const DefaultUrgentWindowDays = 3

// EvaluateAlerts flags records whose expiry or medical-due date falls within
// the urgent window: 0 <= days-left <= windowDays, both ends inclusive.
// Already-past dates are excluded here — an expired licence is the status
// classifier's concern, and alerting on the date too would double-report it.
//
// Pure function of current and runDate; no hidden clock access. A windowDays
// of zero or less falls back to the default.
func EvaluateAlerts(current *model.RecordSet, runDate time.Time, windowDays int) *model.ExpiryAlertSet {
	if windowDays <= 0 {
		windowDays = DefaultUrgentWindowDays
	}

	alerts := &model.ExpiryAlertSet{
		RunDate:    runDate,
		WindowDays: windowDays,
	}

	for _, key := range current.Keys() {
		rec := current.Get(key)

		if a, ok := inWindow(key, rec.ExpiryDate, runDate, windowDays); ok {
			alerts.UrgentExpiry = append(alerts.UrgentExpiry, a)
		}
		if a, ok := inWindow(key, rec.MedicalDue, runDate, windowDays); ok {
			alerts.MedicalDue = append(alerts.MedicalDue, a)
		}
	}

	return alerts
}

// inWindow applies the urgent-window rule to one nullable date
func inWindow(licence string, due *time.Time, runDate time.Time, windowDays int) (model.ExpiryAlert, bool) {
	if due == nil {
		return model.ExpiryAlert{}, false
	}
	days := daysBetween(runDate, *due)
	if days < 0 || days > windowDays {
		return model.ExpiryAlert{}, false
	}
	return model.ExpiryAlert{
		LicenceNumber: licence,
		Due:           *due,
		DaysLeft:      days,
	}, true
}

// DaysUntil returns whole calendar days from runDate to due, negative when
// due is in the past. Exposed for report phrasing.
func DaysUntil(runDate, due time.Time) int {
	return daysBetween(runDate, due)
}

// daysBetween counts calendar days ignoring the time-of-day and zone of its
// arguments, so a run at 23:59 sees the same day count as one at 00:01.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
