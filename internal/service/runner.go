package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// SnapshotStore is the persistence boundary for dated RecordSets. Read
// returns (nil, nil) when no snapshot exists for the date; Write overwrites
// the date's slot, so rerunning a day is the caller's policy call.
type SnapshotStore interface {
	Read(ctx context.Context, date time.Time) (*model.RecordSet, error)
	Write(ctx context.Context, set *model.RecordSet) error
}

// RunRecorder persists one summary row per completed run
type RunRecorder interface {
	Record(ctx context.Context, run *model.RunSummary) error
}

// RunStats tracks the outcome of one daily check run
type RunStats struct {
	RunDate         time.Time
	TotalParsed     int
	Unlicensed      int
	ParseErrors     int
	Baseline        bool
	Added           int
	Removed         int
	StatusChanged   int
	ClassChanged    int
	CommentsChanged int
	UrgentExpiry    int
	MedicalDue      int
	LoaderOnline    bool
	UploadPrepared  bool
	BatchPath       string
	ReportSent      bool
}

// Runner orchestrates the daily pipeline: parse, snapshot, compare, evaluate
// alerts, then hand the results to the reporting and upload collaborators.
// The core steps are pure; only the collaborators touch the outside world,
// and a collaborator failure degrades the run instead of aborting it.
type Runner struct {
	parser    *Parser
	snapshots SnapshotStore
	logger    *log.Logger
	errLogger *log.Logger

	// Optional collaborators; nil disables the corresponding step.
	Roster   *model.Roster
	Sink     ReportSink
	Uploader UploadPreparer
	Loader   *LoaderClient
	Runs     RunRecorder

	// WindowDays overrides the urgent alert window when positive.
	WindowDays int
}

// NewRunner creates a Runner over the given snapshot store
func NewRunner(snapshots SnapshotStore) *Runner {
	return &Runner{
		parser:    NewParser(),
		snapshots: snapshots,
		logger:    log.New(os.Stdout, "", log.LstdFlags),
		errLogger: log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// Run executes one daily check over the raw input. Only structural failures
// (unreadable or empty input, snapshot store errors) return an error; field
// and line problems degrade the run and surface in the report.
func (r *Runner) Run(ctx context.Context, runDate time.Time, input io.Reader) (*RunStats, error) {
	stats := &RunStats{RunDate: runDate}

	r.logger.Printf("Parsing input for %s...", runDate.Format("2006-01-02"))
	current, parseErrs, err := r.parser.ParseReader(input, runDate)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	stats.TotalParsed = current.Len()
	stats.Unlicensed = current.UnlicensedCount()
	stats.ParseErrors = len(parseErrs)
	for _, pe := range parseErrs {
		r.errLogger.Printf("parse: %s", pe)
	}

	if err := r.snapshots.Write(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	r.logger.Printf("Snapshot stored: %d records", current.Len())

	previous, err := r.snapshots.Read(ctx, runDate.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("failed to read previous snapshot: %w", err)
	}
	stats.Baseline = previous == nil
	if stats.Baseline {
		r.logger.Println("No previous snapshot; treating run as baseline")
	}

	changes := Compare(previous, current)
	alerts := EvaluateAlerts(current, runDate, r.WindowDays)

	stats.Added = len(changes.Added)
	stats.Removed = len(changes.Removed)
	stats.StatusChanged = len(changes.StatusChanged)
	stats.ClassChanged = len(changes.ClassChanged)
	stats.CommentsChanged = len(changes.CommentsChanged)
	stats.UrgentExpiry = len(alerts.UrgentExpiry)
	stats.MedicalDue = len(alerts.MedicalDue)

	if r.Loader != nil {
		stats.LoaderOnline = r.Loader.Reachable(ctx)
		if stats.LoaderOnline {
			r.logger.Printf("Loader server %s is reachable", r.Loader.Addr())
		} else {
			r.errLogger.Printf("loader server %s is unreachable", r.Loader.Addr())
		}
	}

	uploadNote := ""
	if r.Uploader != nil {
		path, err := r.Uploader.Prepare(ctx, current, r.Roster, runDate)
		if err != nil {
			r.errLogger.Printf("upload batch not prepared: %v", err)
			uploadNote = err.Error()
		} else {
			stats.UploadPrepared = true
			stats.BatchPath = path
			r.logger.Printf("Upload batch prepared: %s", path)
		}
		if r.Loader != nil && !stats.LoaderOnline {
			uploadNote = "server unreachable: " + r.Loader.Addr()
		}
	}

	report := &DailyReport{
		RunDate:        runDate,
		GeneratedAt:    time.Now(),
		Baseline:       stats.Baseline,
		Current:        current,
		Changes:        changes,
		Alerts:         alerts,
		Roster:         r.Roster,
		ParseErrs:      parseErrs,
		UploadPrepared: stats.UploadPrepared,
		UploadNote:     uploadNote,
	}
	if r.Loader != nil {
		report.LoaderAddr = r.Loader.Addr()
		report.LoaderOnline = stats.LoaderOnline
	}

	if r.Sink != nil {
		r.deliver(ctx, report, stats)
	}

	if r.Runs != nil {
		if err := r.Runs.Record(ctx, r.summary(stats)); err != nil {
			r.errLogger.Printf("failed to record run summary: %v", err)
		}
	}

	return stats, nil
}

// deliver renders and sends the summary plus per-operator notices. Delivery
// failures are logged, never fatal: the run's data is already persisted.
func (r *Runner) deliver(ctx context.Context, report *DailyReport, stats *RunStats) {
	html, err := RenderHTML(report)
	if err != nil {
		r.errLogger.Printf("failed to render report: %v", err)
		return
	}
	if err := r.Sink.DeliverSummary(ctx, report.Subject(), html); err != nil {
		r.errLogger.Printf("failed to deliver summary: %v", err)
		return
	}
	stats.ReportSent = true
	r.logger.Println("Summary report delivered")

	notices, err := RenderNotices(report)
	if err != nil {
		r.errLogger.Printf("failed to render notices: %v", err)
		return
	}
	for _, n := range notices {
		if err := r.Sink.DeliverNotice(ctx, n); err != nil {
			r.errLogger.Printf("failed to deliver notice for %s: %v", n.Operator.OperatorID, err)
		}
	}
	if len(notices) > 0 {
		r.logger.Printf("Delivered %d operator notices", len(notices))
	}
}

// summary converts run stats into the persisted row
func (r *Runner) summary(stats *RunStats) *model.RunSummary {
	return &model.RunSummary{
		ID:              uuid.NewString(),
		RunDate:         stats.RunDate,
		TotalParsed:     stats.TotalParsed,
		Unlicensed:      stats.Unlicensed,
		Added:           stats.Added,
		Removed:         stats.Removed,
		StatusChanged:   stats.StatusChanged,
		ClassChanged:    stats.ClassChanged,
		CommentsChanged: stats.CommentsChanged,
		UrgentExpiry:    stats.UrgentExpiry,
		MedicalDue:      stats.MedicalDue,
		ParseErrors:     stats.ParseErrors,
		Baseline:        stats.Baseline,
		ReportSent:      stats.ReportSent,
		UploadPrepared:  stats.UploadPrepared,
		CreatedAt:       time.Now(),
	}
}

// PrintSummary prints the run statistics
func (r *Runner) PrintSummary(stats *RunStats) {
	r.logger.Println("")
	r.logger.Println("=== Daily Check Summary ===")
	r.logger.Printf("Run date:             %s", stats.RunDate.Format("2006-01-02"))
	r.logger.Printf("Operators parsed:     %d", stats.TotalParsed)
	r.logger.Printf("Unlicenced:           %d", stats.Unlicensed)
	r.logger.Printf("Parse errors:         %d", stats.ParseErrors)
	if stats.Baseline {
		r.logger.Printf("Baseline run:         yes (no previous snapshot)")
	}
	r.logger.Printf("Added:                %d", stats.Added)
	r.logger.Printf("Removed:              %d", stats.Removed)
	r.logger.Printf("Status changes:       %d", stats.StatusChanged)
	r.logger.Printf("Class changes:        %d", stats.ClassChanged)
	r.logger.Printf("Comment changes:      %d", stats.CommentsChanged)
	r.logger.Printf("Urgent expiries:      %d", stats.UrgentExpiry)
	r.logger.Printf("Medical due:          %d", stats.MedicalDue)
	r.logger.Printf("Report delivered:     %v", stats.ReportSent)
	r.logger.Printf("Upload prepared:      %v", stats.UploadPrepared)
}
