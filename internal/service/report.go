package service

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// DailyReport bundles everything the renderer needs for one run. It is a
// read-only view over the core's outputs; building it never mutates them.
type DailyReport struct {
	RunDate     time.Time
	GeneratedAt time.Time
	Baseline    bool

	Current   *model.RecordSet
	Changes   *model.ChangeSet
	Alerts    *model.ExpiryAlertSet
	Roster    *model.Roster
	ParseErrs []model.ParseError

	LoaderAddr     string
	LoaderOnline   bool
	UploadPrepared bool
	UploadNote     string
}

// ChangeRow is one rendered table in the report body
type ChangeRow struct {
	Category       string
	LicenceNumber  string // dashed display form
	Detail         string // old → new, or expiry phrasing
	OperatorName   string
	OperatorID     string
	DepartmentName string
	DepartmentID   string
	Comments       string
}

// OperatorNotice is a standalone HTML document for one affected operator
type OperatorNotice struct {
	Subject  string
	Operator model.Operator
	HTML     string
}

// Subject builds the summary email subject line. A suspension anywhere in the
// change-set promotes it; an unreachable loader is flagged so the run is
// investigated even when the report itself looks routine.
func (r *DailyReport) Subject() string {
	subject := fmt.Sprintf("Driver Licence Change Report – %s", r.RunDate.Format("2006-01-02"))
	if r.Changes != nil && r.Changes.HasSuspension() {
		subject = "**DRIVER SUSPENDED** " + subject
	}
	if r.LoaderAddr != "" && !r.LoaderOnline {
		subject += " [SERVER DOWN]"
	}
	return subject
}

// Unlicensed returns today's records whose status is not VALID, in ascending
// licence-number order
func (r *DailyReport) Unlicensed() []*model.LicenceRecord {
	var out []*model.LicenceRecord
	for _, key := range r.Current.Keys() {
		rec := r.Current.Get(key)
		if rec.Status != model.StatusValid {
			out = append(out, rec)
		}
	}
	return out
}

// Rows flattens the change-set and alert-set into rendered table rows.
// Category order is fixed; within a category rows are already in ascending
// licence order, so the report body is reproducible byte-for-byte.
func (r *DailyReport) Rows() []ChangeRow {
	var rows []ChangeRow

	for _, sc := range r.Changes.StatusChanged {
		rows = append(rows, r.row("STATUS", sc.LicenceNumber,
			fmt.Sprintf("%s → %s", orNone(sc.OldDetail), orNone(sc.NewDetail))))
	}
	for _, cc := range r.Changes.ClassChanged {
		rows = append(rows, r.row("CLASS", cc.LicenceNumber,
			fmt.Sprintf("%s → %s", orNone(strings.Join(cc.Old, "")), orNone(strings.Join(cc.New, "")))))
	}
	for _, cc := range r.Changes.CommentsChanged {
		rows = append(rows, r.row("ENDORSEMENTS/RESTRICTIONS", cc.LicenceNumber,
			fmt.Sprintf("%s → %s", orNone(cc.Old), orNone(cc.New))))
	}
	for _, a := range r.Alerts.UrgentExpiry {
		rows = append(rows, r.row("EXPIRING LICENCE", a.LicenceNumber, ExpiryPhrase(a.DaysLeft, a.Due)))
	}
	for _, a := range r.Alerts.MedicalDue {
		rows = append(rows, r.row("EXPIRING MEDICAL", a.LicenceNumber, ExpiryPhrase(a.DaysLeft, a.Due)))
	}
	for _, key := range r.Changes.Added {
		rows = append(rows, r.row("NEW OPERATOR", key, "not present in previous snapshot"))
	}
	for _, key := range r.Changes.Removed {
		rows = append(rows, r.row("DROPPED OPERATOR", key, "no longer present in today's snapshot"))
	}

	return rows
}

// row enriches one change entry with roster details, falling back to the
// parsed record's name and UNKNOWN placeholders when the operator is not in
// the master list.
func (r *DailyReport) row(category, licence, detail string) ChangeRow {
	cr := ChangeRow{
		Category:       category,
		LicenceNumber:  model.FormatLicenceNumber(licence),
		Detail:         detail,
		OperatorName:   "UNKNOWN",
		OperatorID:     "UNKNOWN",
		DepartmentName: "UNKNOWN",
		DepartmentID:   "UNKNOWN",
		Comments:       "NONE",
	}

	if rec := r.Current.Get(licence); rec != nil {
		if rec.Name != "" {
			cr.OperatorName = rec.Name
		}
		if strings.TrimSpace(rec.Comments) != "" {
			cr.Comments = rec.Comments
		}
	}
	if r.Roster != nil {
		if op, ok := r.Roster.Lookup(licence); ok {
			cr.OperatorName = op.Name
			cr.OperatorID = op.OperatorID
			cr.DepartmentName = op.DepartmentName
			cr.DepartmentID = op.DepartmentID
		}
	}
	return cr
}

// ExpiryPhrase renders the days-left wording used by expiry rows
func ExpiryPhrase(daysLeft int, due time.Time) string {
	date := due.Format("2006-01-02")
	switch {
	case daysLeft < 0:
		return fmt.Sprintf("EXPIRED %d DAYS AGO (Due: %s)", -daysLeft, date)
	case daysLeft == 0:
		return fmt.Sprintf("EXPIRES TODAY (Due: %s)", date)
	default:
		return fmt.Sprintf("APPROACHING IN %d DAYS (Due: %s)", daysLeft, date)
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "NONE"
	}
	return s
}

var reportTemplate = template.Must(template.New("report").Parse(`<h2>{{.Subject}}</h2>
<style>
    body { font-family: Arial, sans-serif; font-size: 14px; margin: 30px; }
    table { border-collapse: collapse; width: 600px; table-layout: fixed; margin-bottom: 0; }
    table + table { margin-top: 20px; }
    th { width: 200px; background-color: #f2f2f2; border: 1px solid #999; padding: 10px;
         font-size: 14px; text-align: left; vertical-align: top; }
    td { width: 400px; border: 1px solid #999; padding: 10px; font-size: 14px;
         text-align: left; vertical-align: top; word-wrap: break-word; }
    h3 { margin-top: 50px; margin-bottom: 10px; font-size: 18px; }
    ul { margin-bottom: 30px; }
</style>
<p><b>Run date:</b> {{.RunDate}}</p>
{{if .Baseline}}<p><i>No previous snapshot was available; every operator is reported as new.</i></p>{{end}}
{{if .ServerDown}}<p style="color:darkred;"><b>Server Status:</b> {{.LoaderAddr}} is UNREACHABLE — upload skipped</p>{{end}}
<ul>
    <li>Total operators parsed: {{.TotalParsed}}</li>
    <li>Total operators unlicenced: {{len .Unlicensed}}</li>
    <li>Total operators with licence status changes: {{.StatusChanged}}</li>
    <li>Total operators with class changes: {{.ClassChanged}}</li>
    <li>Total operators with endorsement/restriction changes: {{.CommentsChanged}}</li>
    <li>Total operators within {{.WindowDays}} days of licence expiry: {{.UrgentExpiry}}</li>
    <li>Total operators within {{.WindowDays}} days of medical expiry: {{.MedicalDue}}</li>
</ul>
{{if .Unlicensed}}
<h3>Unlicenced Operators</h3>
{{range .Unlicensed}}
<table>
    <tr><th>Employee</th><td>{{.OperatorName}} (ID: {{.OperatorID}})</td></tr>
    <tr><th>Department</th><td>{{.DepartmentName}} (ID: {{.DepartmentID}})</td></tr>
    <tr><th>Licence Status</th><td>{{.Detail}}</td></tr>
    <tr><th>Driver Licence Number</th><td>{{.LicenceNumber}}</td></tr>
    <tr><th>Comments</th><td>{{.Comments}}</td></tr>
</table>
{{end}}
{{end}}
<h3>Operators With Changes</h3>
{{if .Rows}}
{{range .Rows}}
<table>
    <tr><th>Employee</th><td>{{.OperatorName}} (ID: {{.OperatorID}})</td></tr>
    <tr><th>Department</th><td>{{.DepartmentName}} (ID: {{.DepartmentID}})</td></tr>
    <tr><th>Change Type</th><td>{{.Category}}</td></tr>
    <tr><th>Old → New</th><td>{{.Detail}}</td></tr>
    <tr><th>Driver Licence Number</th><td>{{.LicenceNumber}}</td></tr>
    <tr><th>Comments</th><td>{{.Comments}}</td></tr>
</table>
{{end}}
{{else}}
<p>NONE</p>
{{end}}
{{if .ParseErrs}}
<h3 style="color: darkred;">Parse Errors</h3>
<ul>
{{range .ParseErrs}}<li>{{.}}</li>
{{end}}</ul>
{{end}}
<p style="margin-top:30px; margin-bottom:0;"><b>{{.UploadLine}}</b></p>
<p><b>Generated:</b> {{.GeneratedAt}}</p>
`))

// reportData is the flattened view handed to the template
type reportData struct {
	Subject         string
	RunDate         string
	GeneratedAt     string
	Baseline        bool
	ServerDown      bool
	LoaderAddr      string
	TotalParsed     int
	StatusChanged   int
	ClassChanged    int
	CommentsChanged int
	UrgentExpiry    int
	MedicalDue      int
	WindowDays      int
	Unlicensed      []ChangeRow
	Rows            []ChangeRow
	ParseErrs       []string
	UploadLine      string
}

// RenderHTML renders the daily summary report. Every run, including one with
// zero changes, produces a body: absence of change is itself reportable.
func RenderHTML(rep *DailyReport) (string, error) {
	data := reportData{
		Subject:         rep.Subject(),
		RunDate:         rep.RunDate.Format("2006-01-02"),
		GeneratedAt:     rep.GeneratedAt.Format("2006-01-02 15:04:05"),
		Baseline:        rep.Baseline,
		ServerDown:      rep.LoaderAddr != "" && !rep.LoaderOnline,
		LoaderAddr:      rep.LoaderAddr,
		TotalParsed:     rep.Current.Len(),
		StatusChanged:   len(rep.Changes.StatusChanged),
		ClassChanged:    len(rep.Changes.ClassChanged),
		CommentsChanged: len(rep.Changes.CommentsChanged),
		UrgentExpiry:    len(rep.Alerts.UrgentExpiry),
		MedicalDue:      len(rep.Alerts.MedicalDue),
		WindowDays:      rep.Alerts.WindowDays,
		Rows:            rep.Rows(),
	}

	for _, rec := range rep.Unlicensed() {
		row := rep.row("UNLICENCED", rec.LicenceNumber, orNone(rec.StatusDetail))
		data.Unlicensed = append(data.Unlicensed, row)
	}
	for _, pe := range rep.ParseErrs {
		data.ParseErrs = append(data.ParseErrs, pe.String())
	}

	if rep.UploadPrepared {
		data.UploadLine = "AssetWorks upload batch: PREPARED"
	} else {
		data.UploadLine = "AssetWorks upload batch: NOT PREPARED"
	}
	if rep.UploadNote != "" {
		data.UploadLine += " — " + rep.UploadNote
	}

	var b strings.Builder
	if err := reportTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}

var noticeTemplate = template.Must(template.New("notice").Parse(`<style>
    body { font-family: Arial, sans-serif; margin: 30px; max-width: 100%; word-wrap: break-word; }
    table { border-collapse: collapse; width: 100%; table-layout: fixed; word-break: break-word; margin-bottom: 20px; }
    th, td { border: 1px solid #999; padding: 8px; font-size: 14px; text-align: left; vertical-align: top; }
    th { background-color: #f2f2f2; }
</style>
<h3>Driver Licence Change Notification</h3>
<p><b>Report Generated:</b> {{.RunDate}}</p>
<table>
    <tr><th>Employee</th><td>{{.Row.OperatorName}} (ID: {{.Row.OperatorID}})</td></tr>
    <tr><th>Department</th><td>{{.Row.DepartmentName}} (ID: {{.Row.DepartmentID}})</td></tr>
    <tr><th>Change Type</th><td>{{.Row.Category}}</td></tr>
    <tr><th>Old → New</th><td>{{.Row.Detail}}</td></tr>
    <tr><th>Driver Licence Number</th><td>{{.Row.LicenceNumber}}</td></tr>
</table>
`))

// RenderNotices builds one standalone HTML document per change row whose
// operator appears in the roster. Added/removed rows are excluded: those go
// to the back office through the summary, not to the operator.
func RenderNotices(rep *DailyReport) ([]OperatorNotice, error) {
	if rep.Roster == nil {
		return nil, nil
	}

	var notices []OperatorNotice
	for _, row := range rep.Rows() {
		if row.Category == "NEW OPERATOR" || row.Category == "DROPPED OPERATOR" {
			continue
		}
		op, ok := rep.Roster.Lookup(strings.ReplaceAll(row.LicenceNumber, "-", ""))
		if !ok {
			continue
		}

		var b strings.Builder
		err := noticeTemplate.Execute(&b, struct {
			RunDate string
			Row     ChangeRow
		}{rep.RunDate.Format("2006-01-02"), row})
		if err != nil {
			return nil, fmt.Errorf("failed to render notice for %s: %w", op.OperatorID, err)
		}

		notices = append(notices, OperatorNotice{
			Subject:  fmt.Sprintf("[Driver Alert] %s – %s", op.Name, row.Category),
			Operator: *op,
			HTML:     b.String(),
		})
	}

	sort.SliceStable(notices, func(i, j int) bool {
		return notices[i].Operator.OperatorID < notices[j].Operator.OperatorID
	})
	return notices, nil
}
