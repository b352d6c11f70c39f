package service

import (
	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// Compare diffs two snapshots keyed by licence number. A nil previous is the
// valid first-run baseline: everything in current is reported as added and
// the other categories stay empty.
//
// Classes are compared as canonical sorted sets, dates by calendar value,
// status by enum identity, comments under normalization. Output slices are in
// ascending licence-number order so repeated runs over identical inputs
// produce byte-identical change reports.
func Compare(previous, current *model.RecordSet) *model.ChangeSet {
	changes := &model.ChangeSet{}

	if previous == nil {
		changes.Added = current.Keys()
		return changes
	}

	for _, key := range current.Keys() {
		cur := current.Get(key)
		prev := previous.Get(key)
		if prev == nil {
			changes.Added = append(changes.Added, key)
			continue
		}

		if cur.Status != prev.Status {
			changes.StatusChanged = append(changes.StatusChanged, model.StatusChange{
				LicenceNumber: key,
				Old:           prev.Status,
				New:           cur.Status,
				OldDetail:     prev.StatusDetail,
				NewDetail:     cur.StatusDetail,
			})
		}

		if !model.ClassesEqual(prev.Classes, cur.Classes) {
			changes.ClassChanged = append(changes.ClassChanged, model.ClassChange{
				LicenceNumber: key,
				Old:           prev.Classes,
				New:           cur.Classes,
			})
		}

		if !CommentsEqual(prev.Comments, cur.Comments) {
			changes.CommentsChanged = append(changes.CommentsChanged, model.CommentsChange{
				LicenceNumber: key,
				Old:           prev.Comments,
				New:           cur.Comments,
			})
		}
	}

	for _, key := range previous.Keys() {
		if current.Get(key) == nil {
			changes.Removed = append(changes.Removed, key)
		}
	}

	return changes
}
