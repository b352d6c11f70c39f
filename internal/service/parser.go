package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// Fixed-column layout of the licensing system's daily export. Offsets are
// byte positions within one line; the record type at [34:40] decides how the
// rest of the line is read.
const (
	recordTypeStart = 34
	recordTypeEnd   = 40

	licenceStart = 47
	licenceEnd   = 62
	nameStart    = 68
	nameEnd      = 98
	classStart   = 108
	classEnd     = 112
	statusStart  = 115
	statusEnd    = 193
	expiryStart  = 193
	expiryEnd    = 199

	detailDateStart    = 68
	detailDateEnd      = 74
	commentMarkerStart = 68
	commentMarkerEnd   = 75
	commentTextStart   = 75
	commentTextEnd     = 128
)

const (
	recordTypeDriver = "100001" // main driver info block
	recordTypeDetail = "210001" // continuation: medical due, comments

	medicalDueMarker   = "MEDICAL DUE DATE"
	commentLineMarker  = "9999991"
	airBrakeComment    = "AIR BRAKE ENDORSEMENT"
	actionsCountMarker = "ACTIONS COUNT"
)

// ErrEmptyInput is the structural failure for a run whose input produced no
// usable lines at all. Callers must be able to tell "no licences today" apart
// from "could not read input", so this is an error rather than an empty
// RecordSet.
var ErrEmptyInput = errors.New("input contains no data")

// Parser turns one day's raw export into a RecordSet. A malformed line never
// aborts the batch: problems are accumulated into the returned error report.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// pending is a driver record being assembled across its continuation lines
type pending struct {
	record   *model.LicenceRecord
	comments []string
	line     int // line number of the driver block, for duplicate reporting
}

// ParseReader reads all input lines and parses them
func (p *Parser) ParseReader(r io.Reader, runDate time.Time) (*model.RecordSet, []model.ParseError, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read input: %w", err)
	}
	return p.Parse(lines, runDate)
}

// Parse processes the raw lines into a RecordSet dated runDate. The returned
// ParseError slice carries every field- and line-level problem in input
// order. Records whose licence number cannot be normalized are excluded
// (INVALID_KEY); all other errors admit the record in degraded form. When
// the same licence number appears twice the last block wins and the
// displacement is reported, not silently lost.
func (p *Parser) Parse(lines []string, runDate time.Time) (*model.RecordSet, []model.ParseError, error) {
	set := model.NewRecordSet(runDate)
	var report []model.ParseError
	recordLines := make(map[string]int) // canonical licence -> driver block line

	var cur *pending
	sawContent := false

	flush := func() {
		if cur == nil {
			return
		}
		p.finalize(cur)
		key := cur.record.LicenceNumber
		if displaced := set.Add(cur.record); displaced != nil {
			report = append(report, model.ParseError{
				Line:    recordLines[key],
				Field:   "licence_number",
				Reason:  model.ReasonDuplicateKey,
				Message: fmt.Sprintf("duplicate licence number %s: line %d displaced by line %d", key, recordLines[key], cur.line),
			})
		}
		recordLines[key] = cur.line
		cur = nil
	}

	for idx, line := range lines {
		lineNo := idx + 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		sawContent = true

		if len(line) < recordTypeEnd {
			report = append(report, model.ParseError{
				Line:    lineNo,
				Field:   "record_type",
				Reason:  model.ReasonShortLine,
				Message: fmt.Sprintf("line too short (%d bytes) to carry a record type", len(line)),
			})
			continue
		}

		switch line[recordTypeStart:recordTypeEnd] {
		case recordTypeDriver:
			flush()
			next, errs := p.parseDriverLine(line, lineNo)
			report = append(report, errs...)
			cur = next
		case recordTypeDetail:
			if cur == nil {
				// Continuation with no open driver block: the block was
				// either excluded (bad key) or the export is mangled.
				continue
			}
			report = append(report, p.parseDetailLine(line, lineNo, cur)...)
		default:
			// Other record types exist in the export but carry nothing the
			// pipeline consumes.
		}
	}
	flush()

	if !sawContent {
		return nil, nil, ErrEmptyInput
	}
	return set, report, nil
}

// parseDriverLine starts a new pending record from a "100001" block. A nil
// pending means the line was excluded (unusable licence number); the errors
// slice always carries the reason.
func (p *Parser) parseDriverLine(line string, lineNo int) (*pending, []model.ParseError) {
	var errs []model.ParseError

	record := func(e *model.ParseError) {
		if e != nil {
			e.Line = lineNo
			errs = append(errs, *e)
		}
	}

	canonical, keyErr := NormalizeLicenceNumber(slice(line, licenceStart, licenceEnd))
	record(keyErr)
	if keyErr != nil && keyErr.Reason == model.ReasonInvalidKey {
		return nil, errs
	}

	if len(line) < expiryEnd {
		record(&model.ParseError{
			Field:   "record",
			Reason:  model.ReasonShortLine,
			Message: fmt.Sprintf("driver block truncated at %d bytes, want %d", len(line), expiryEnd),
		})
	}

	classes, clsErr := ParseClassField(slice(line, classStart, classEnd))
	record(clsErr)

	status, detail := ParseStatus(slice(line, statusStart, statusEnd))

	expiry, expErr := ParseDate(slice(line, expiryStart, expiryEnd), "expiry_date")
	record(expErr)

	rec := &model.LicenceRecord{
		LicenceNumber: canonical,
		Name:          strings.TrimSpace(slice(line, nameStart, nameEnd)),
		Classes:       classes,
		Status:        status,
		StatusDetail:  detail,
		ExpiryDate:    expiry,
		ParseErrors:   errs,
	}

	return &pending{record: rec, line: lineNo}, errs
}

// parseDetailLine folds a "210001" continuation into the open driver block
func (p *Parser) parseDetailLine(line string, lineNo int, cur *pending) []model.ParseError {
	var errs []model.ParseError

	if strings.Contains(line, medicalDueMarker) {
		due, dueErr := ParseDate(slice(line, detailDateStart, detailDateEnd), "medical_due_date")
		if dueErr != nil {
			dueErr.Line = lineNo
			errs = append(errs, *dueErr)
			cur.record.ParseErrors = append(cur.record.ParseErrors, *dueErr)
		} else if due != nil {
			cur.record.MedicalDue = due
		}
	}

	if slice(line, commentMarkerStart, commentMarkerEnd) == commentLineMarker {
		comment := strings.TrimSpace(slice(line, commentTextStart, commentTextEnd))
		if comment != "" && !strings.Contains(comment, actionsCountMarker) {
			cur.comments = append(cur.comments, comment)
		}
	}

	return errs
}

// finalize applies the air-brake endorsement rule and joins comments. The
// source reports air brakes as a comment rather than a class code, so it is
// promoted into the class set and dropped from the comment list.
func (p *Parser) finalize(cur *pending) {
	comments := cur.comments
	for i, c := range comments {
		if c == airBrakeComment {
			cur.record.Classes = model.CanonicalClasses(append(cur.record.Classes, "Z"))
			comments = append(comments[:i], comments[i+1:]...)
			break
		}
	}
	cur.record.Comments = strings.Join(comments, "; ")
}

// slice returns line[start:end], tolerating lines shorter than the layout
func slice(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
