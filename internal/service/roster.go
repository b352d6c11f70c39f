package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// rosterColumns are the required headers of the master operator list
var rosterColumns = []string{"DepartmentID", "DepartmentName", "OperatorName", "OperatorID", "LicenceNo"}

// LoadRoster reads the master operator list CSV from disk
func LoadRoster(path string) (*model.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster %s: %w", path, err)
	}
	defer f.Close()
	return ReadRoster(f)
}

// ReadRoster parses the operator roster CSV. The first row must be a header
// carrying all required columns; rows whose licence number normalizes to
// nothing are skipped rather than failing the load, since a roster typo must
// not block the daily run.
func ReadRoster(r io.Reader) (*model.Roster, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range rosterColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("roster missing required column %q (have: %s)", col, strings.Join(header, ", "))
		}
	}

	var operators []model.Operator
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster row: %w", err)
		}

		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		licence, keyErr := NormalizeLicenceNumber(cell("LicenceNo"))
		if keyErr != nil && keyErr.Reason == model.ReasonInvalidKey {
			continue
		}

		operators = append(operators, model.Operator{
			OperatorID:     cleanOperatorID(cell("OperatorID")),
			Name:           cell("OperatorName"),
			DepartmentID:   cell("DepartmentID"),
			DepartmentName: cell("DepartmentName"),
			LicenceNumber:  licence,
		})
	}

	return model.NewRoster(operators), nil
}

// cleanOperatorID strips the trailing ".0" that spreadsheet exports attach to
// numeric ids
func cleanOperatorID(id string) string {
	return strings.TrimSuffix(id, ".0")
}
