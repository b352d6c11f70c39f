package model

import "time"

// StatusChange records a licence whose status differs between two snapshots
type StatusChange struct {
	LicenceNumber string
	Old           Status
	New           Status
	OldDetail     string
	NewDetail     string
}

// ClassChange records a licence whose canonical class set differs
type ClassChange struct {
	LicenceNumber string
	Old           []string
	New           []string
}

// CommentsChange records a licence whose normalized comment set differs
type CommentsChange struct {
	LicenceNumber string
	Old           string
	New           string
}

// ChangeSet is the structured diff between two snapshots. All slices are in
// ascending licence-number order so repeated runs over identical inputs
// produce byte-identical reports.
type ChangeSet struct {
	Added           []string
	Removed         []string
	StatusChanged   []StatusChange
	ClassChanged    []ClassChange
	CommentsChanged []CommentsChange
}

// Empty reports whether the diff found nothing at all
func (c *ChangeSet) Empty() bool {
	return c.Total() == 0
}

// Total returns the number of entries across all categories
func (c *ChangeSet) Total() int {
	return len(c.Added) + len(c.Removed) + len(c.StatusChanged) +
		len(c.ClassChanged) + len(c.CommentsChanged)
}

// HasSuspension reports whether any status change landed on SUSPENDED
func (c *ChangeSet) HasSuspension() bool {
	for _, sc := range c.StatusChanged {
		if sc.New == StatusSuspended {
			return true
		}
	}
	return false
}

// ExpiryAlert flags one licence whose expiry or medical-due date falls inside
// the urgent window
type ExpiryAlert struct {
	LicenceNumber string
	Due           time.Time
	DaysLeft      int
}

// ExpiryAlertSet holds the urgent-window alerts evaluated against a single
// snapshot. Alerts are recomputed every run and never persisted.
type ExpiryAlertSet struct {
	RunDate      time.Time
	WindowDays   int
	UrgentExpiry []ExpiryAlert
	MedicalDue   []ExpiryAlert
}

// Empty reports whether no alert fired
func (a *ExpiryAlertSet) Empty() bool {
	return len(a.UrgentExpiry) == 0 && len(a.MedicalDue) == 0
}
