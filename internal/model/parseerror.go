package model

import "fmt"

// ErrorReason identifies why a field or line could not be parsed cleanly
type ErrorReason string

const (
	// ReasonInvalidKey marks a record whose licence number normalized to
	// nothing usable; the record is excluded from the RecordSet.
	ReasonInvalidKey ErrorReason = "INVALID_KEY"

	// ReasonBadLength marks a licence number that normalized to a non-empty
	// value of the wrong width; the record is kept, degraded.
	ReasonBadLength ErrorReason = "BAD_LENGTH"

	ReasonBadDate      ErrorReason = "BAD_DATE"
	ReasonUnknownClass ErrorReason = "UNKNOWN_CLASS"
	ReasonShortLine    ErrorReason = "SHORT_LINE"
	ReasonDuplicateKey ErrorReason = "DUPLICATE_KEY"
)

// ParseError describes one field- or line-level problem found while parsing.
// Errors are accumulated and returned beside the RecordSet, never thrown.
type ParseError struct {
	Line    int // 1-based input line number, 0 when not tied to a line
	Field   string
	Reason  ErrorReason
	Message string
}

func (e ParseError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s [%s]: %s", e.Line, e.Field, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Field, e.Reason, e.Message)
}
