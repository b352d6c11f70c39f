package model

import (
	"sort"
	"strings"
	"time"
)

// Status classifies a licence's standing as reported by the licensing system
type Status int

const (
	StatusUnknown Status = iota
	StatusValid
	StatusSuspended
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "VALID"
	case StatusSuspended:
		return "SUSPENDED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// StatusFromString maps a stored enum name back to its Status; anything
// unrecognized is UNKNOWN
func StatusFromString(s string) Status {
	switch s {
	case "VALID":
		return StatusValid
	case "SUSPENDED":
		return StatusSuspended
	case "EXPIRED":
		return StatusExpired
	default:
		return StatusUnknown
	}
}

// LicenceRecord represents one operator's licence state on a given date
type LicenceRecord struct {
	LicenceNumber string // canonical: uppercase, separators stripped
	Name          string
	Classes       []string // canonical: sorted, de-duplicated class/endorsement codes
	Status        Status
	StatusDetail  string // raw status text as printed by the source system
	ExpiryDate    *time.Time
	MedicalDue    *time.Time
	Comments      string
	ParseErrors   []ParseError
}

// ClassString returns the compact class/endorsement form used in reports (e.g. "DZ")
func (r *LicenceRecord) ClassString() string {
	return strings.Join(r.Classes, "")
}

// Degraded reports whether any field-level errors were attached during parsing
func (r *LicenceRecord) Degraded() bool {
	return len(r.ParseErrors) > 0
}

// RecordSet is the full set of licence records captured for one calendar date.
// It is built once by the parser and never mutated after that; reruns for the
// same date produce a new RecordSet.
type RecordSet struct {
	Date    time.Time
	Records map[string]*LicenceRecord
}

// NewRecordSet creates an empty RecordSet for the given date
func NewRecordSet(date time.Time) *RecordSet {
	return &RecordSet{
		Date:    date,
		Records: make(map[string]*LicenceRecord),
	}
}

// Add stores a record keyed by its licence number. If a record with the same
// key already exists it is displaced (last-line-wins) and returned so the
// caller can report it.
func (rs *RecordSet) Add(r *LicenceRecord) *LicenceRecord {
	displaced := rs.Records[r.LicenceNumber]
	rs.Records[r.LicenceNumber] = r
	return displaced
}

// Get returns the record for a canonical licence number, or nil
func (rs *RecordSet) Get(licenceNumber string) *LicenceRecord {
	return rs.Records[licenceNumber]
}

// Len returns the number of records in the set
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// Keys returns all licence numbers in ascending order. Every consumer that
// iterates a RecordSet goes through this so output ordering stays reproducible.
func (rs *RecordSet) Keys() []string {
	keys := make([]string, 0, len(rs.Records))
	for k := range rs.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnlicensedCount returns how many records carry a status other than VALID
func (rs *RecordSet) UnlicensedCount() int {
	count := 0
	for _, r := range rs.Records {
		if r.Status != StatusValid {
			count++
		}
	}
	return count
}

// CanonicalClasses sorts and de-duplicates class codes so that input-order
// drift never shows up as a class change.
func CanonicalClasses(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ClassesEqual compares two canonical class sets
func ClassesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatLicenceNumber renders a 15-character canonical licence number in the
// dashed 5-5-5 display form. Anything else is returned as-is.
func FormatLicenceNumber(canonical string) string {
	if len(canonical) != 15 {
		return canonical
	}
	return canonical[:5] + "-" + canonical[5:10] + "-" + canonical[10:]
}
