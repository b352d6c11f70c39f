package service

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
	"github.com/erimojdehi/aris-driver-check/internal/store"
)

// UploadPreparer produces the batch file the external loader tool consumes.
// The core never observes the loader's confirmation; preparation outcome is
// all that flows back into the run log.
type UploadPreparer interface {
	Prepare(ctx context.Context, current *model.RecordSet, roster *model.Roster, runDate time.Time) (string, error)
}

const (
	// defaultImportCode is the loader template the batch targets; the header
	// row's remaining cells are the template's field codes.
	defaultImportCode = "2022"

	batchRowMarker  = "[u:1]"
	batchFilePrefix = "ARIS_upload_"
)

var batchFieldCodes = []string{"101:2", "104:10", "104:6", "104:8", "104:15", "104:20"}

// BatchWriter writes AssetWorks-compatible SpreadsheetML batch files into a
// drop directory watched by the loader.
type BatchWriter struct {
	Dir        string
	ImportCode string
}

// NewBatchWriter creates a BatchWriter targeting the default import template
func NewBatchWriter(dir string) *BatchWriter {
	return &BatchWriter{Dir: dir, ImportCode: defaultImportCode}
}

// Prepare writes the batch file for runDate and returns its path. Operator
// ids are joined in from the roster; an id that still carries a decimal point
// aborts the batch, since the loader rejects the whole file on one bad row.
func (w *BatchWriter) Prepare(ctx context.Context, current *model.RecordSet, roster *model.Roster, runDate time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	date := runDate.Format("2006-01-02")
	rows := [][]string{append([]string{w.ImportCode}, batchFieldCodes...)}

	for _, key := range current.Keys() {
		rec := current.Get(key)

		operatorID := "UNKNOWN"
		if roster != nil {
			if op, ok := roster.Lookup(key); ok {
				operatorID = op.OperatorID
			}
		}
		if strings.Contains(operatorID, ".") {
			return "", fmt.Errorf("operator id %q for licence %s contains a decimal, batch not uploadable", operatorID, key)
		}

		rows = append(rows, []string{
			batchRowMarker,
			operatorID,
			date,
			formatDate(rec.ExpiryDate),
			rec.ClassString(),
			formatDate(rec.MedicalDue),
			orNone(rec.Comments),
		})
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create batch dir: %w", err)
	}

	path := filepath.Join(w.Dir, batchFilePrefix+date+".xml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create batch file: %w", err)
	}
	defer f.Close()

	if err := store.WriteSpreadsheet(f, "Sheet1", rows); err != nil {
		return "", fmt.Errorf("failed to write batch file: %w", err)
	}
	return path, nil
}

// Prune deletes loader artifacts from earlier dates so the drop directory
// only ever holds the current batch and its processed marker.
func (w *BatchWriter) Prune(runDate time.Time) error {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read batch dir: %w", err)
	}

	keep := batchFilePrefix + runDate.Format("2006-01-02")
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, batchFilePrefix) {
			continue
		}
		if !strings.HasSuffix(name, ".xml") && !strings.HasSuffix(name, "-processed.txt") {
			continue
		}
		if strings.HasPrefix(name, keep) {
			continue
		}
		if err := os.Remove(filepath.Join(w.Dir, name)); err != nil {
			return fmt.Errorf("failed to delete old batch artifact %s: %w", name, err)
		}
	}
	return nil
}

const (
	probeTimeout    = 3 * time.Second
	maxProbeRetries = 3
	initialBackoff  = 2 * time.Second
)

// LoaderClient probes the loader server. The pipeline only needs to know
// whether the host is reachable before it leaves a batch file behind; the
// loader's own protocol stays out of scope.
type LoaderClient struct {
	addr    string
	timeout time.Duration
}

// NewLoaderClient creates a client for host:port
func NewLoaderClient(host string, port int) *LoaderClient {
	return &LoaderClient{
		addr:    fmt.Sprintf("%s:%d", host, port),
		timeout: probeTimeout,
	}
}

// Addr returns the probed address for reporting
func (c *LoaderClient) Addr() string {
	return c.addr
}

// Reachable dials the loader with bounded retry and exponential backoff
func (c *LoaderClient) Reachable(ctx context.Context) bool {
	backoff := initialBackoff

	for attempt := 0; attempt < maxProbeRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		dialer := net.Dialer{Timeout: c.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", c.addr)
		if err == nil {
			conn.Close()
			return true
		}
	}
	return false
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
