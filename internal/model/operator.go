package model

import "sort"

// Operator is one row of the master operator roster
type Operator struct {
	OperatorID     string
	Name           string
	DepartmentID   string
	DepartmentName string
	LicenceNumber  string // canonical, matches LicenceRecord keys
}

// Department aggregates roster counts for one department
type Department struct {
	DepartmentID   string
	DepartmentName string
	OperatorCount  int
}

// Roster indexes operators by canonical licence number for report enrichment
type Roster struct {
	byLicence map[string]*Operator
}

// NewRoster builds a roster index. Later rows win on duplicate licence keys,
// matching how the source spreadsheet is maintained (newest row appended last).
func NewRoster(operators []Operator) *Roster {
	r := &Roster{byLicence: make(map[string]*Operator, len(operators))}
	for i := range operators {
		op := operators[i]
		r.byLicence[op.LicenceNumber] = &op
	}
	return r
}

// Lookup returns the operator holding the given canonical licence number
func (r *Roster) Lookup(licenceNumber string) (*Operator, bool) {
	op, ok := r.byLicence[licenceNumber]
	return op, ok
}

// Len returns the number of distinct licence keys in the roster
func (r *Roster) Len() int {
	return len(r.byLicence)
}

// Operators returns all roster entries in ascending licence-number order
func (r *Roster) Operators() []Operator {
	keys := make([]string, 0, len(r.byLicence))
	for k := range r.byLicence {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Operator, 0, len(keys))
	for _, k := range keys {
		out = append(out, *r.byLicence[k])
	}
	return out
}
