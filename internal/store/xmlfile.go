package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// snapshotColumns is the header row of a stored snapshot worksheet. The
// layout matches the spreadsheet the back office has always received, so
// existing files stay readable.
var snapshotColumns = []string{
	"Client Name", "Driver Licence Number", "Class",
	"Expiry Date", "Licence Status", "Medical Due Date", "Comments",
}

const snapshotFilePrefix = "ARIS_"

// XMLFileStore keeps one SpreadsheetML file per date in a directory. It is
// the storage the pipeline runs on when no database is configured.
type XMLFileStore struct {
	Dir string
}

// NewXMLFileStore creates the directory if needed
func NewXMLFileStore(dir string) (*XMLFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &XMLFileStore{Dir: dir}, nil
}

func (s *XMLFileStore) path(date time.Time) string {
	return filepath.Join(s.Dir, snapshotFilePrefix+date.Format("2006-01-02")+".xml")
}

// Write stores the RecordSet as ARIS_<date>.xml, replacing any existing file
func (s *XMLFileStore) Write(ctx context.Context, set *model.RecordSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := [][]string{snapshotColumns}
	for _, key := range set.Keys() {
		rec := set.Get(key)
		rows = append(rows, []string{
			rec.Name,
			model.FormatLicenceNumber(rec.LicenceNumber),
			rec.ClassString(),
			xmlDate(rec.ExpiryDate),
			rec.StatusDetail,
			xmlDate(rec.MedicalDue),
			rec.Comments,
		})
	}

	f, err := os.Create(s.path(set.Date))
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	if err := WriteSpreadsheet(f, "Drivers", rows); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", set.Date.Format("2006-01-02"), err)
	}
	return nil
}

// Read loads a date's snapshot file, or returns nil when none exists.
// Rows that no longer normalize to a usable licence number are skipped; a
// hand-edited snapshot must not break the next morning's diff.
func (s *XMLFileStore) Read(ctx context.Context, date time.Time) (*model.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(date))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	rows, err := ReadSpreadsheet(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", date.Format("2006-01-02"), err)
	}

	set := model.NewRecordSet(date)
	if len(rows) < 2 {
		return set, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}

	for _, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		licence := canonicalKey(cell("Driver Licence Number"))
		if licence == "" {
			continue
		}

		detail := strings.TrimSpace(cell("Licence Status"))
		status, _ := statusOf(detail)

		set.Add(&model.LicenceRecord{
			LicenceNumber: licence,
			Name:          strings.TrimSpace(cell("Client Name")),
			Classes:       splitClasses(cell("Class")),
			Status:        status,
			StatusDetail:  detail,
			ExpiryDate:    parseXMLDate(cell("Expiry Date")),
			MedicalDue:    parseXMLDate(cell("Medical Due Date")),
			Comments:      strings.TrimSpace(cell("Comments")),
		})
	}

	return set, nil
}

// Dates lists the dates with a stored snapshot file, newest first
func (s *XMLFileStore) Dates(ctx context.Context) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	var dates []time.Time
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, snapshotFilePrefix) || !strings.HasSuffix(name, ".xml") {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, snapshotFilePrefix), ".xml")
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sortDatesDesc(dates)
	return dates, nil
}

// Prune deletes snapshot files older than maxAge relative to now
func (s *XMLFileStore) Prune(now time.Time, maxAge time.Duration) error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, snapshotFilePrefix) || !strings.HasSuffix(name, ".xml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
				return fmt.Errorf("failed to prune %s: %w", name, err)
			}
		}
	}
	return nil
}

// canonicalKey normalizes a displayed licence number back to its map key
func canonicalKey(display string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(display)))
}

// statusOf mirrors the parser's status mapping for stored raw text
func statusOf(detail string) (model.Status, string) {
	upper := strings.ToUpper(detail)
	switch {
	case upper == "LICENCED" || upper == "LICENSED":
		return model.StatusValid, detail
	case strings.Contains(upper, "SUSPENDED"):
		return model.StatusSuspended, detail
	case strings.Contains(upper, "EXPIRED"):
		return model.StatusExpired, detail
	default:
		return model.StatusUnknown, detail
	}
}

func splitClasses(compact string) []string {
	compact = strings.TrimSpace(compact)
	if compact == "" {
		return nil
	}
	codes := make([]string, 0, len(compact))
	for _, r := range compact {
		codes = append(codes, string(r))
	}
	return model.CanonicalClasses(codes)
}

func xmlDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func parseXMLDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
