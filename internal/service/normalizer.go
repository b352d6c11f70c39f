package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// licenceNumberWidth is the fixed width of a canonical licence number
// (printed by the source system as three dash-separated 5-character groups).
const licenceNumberWidth = 15

// knownClassCodes covers the base classes, graduated-level digits and the
// air-brake endorsement. Codes outside this set are kept as opaque values.
var knownClassCodes = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true,
	"F": true, "G": true, "M": true, "Z": true,
	"1": true, "2": true,
}

// NormalizeLicenceNumber strips separators and whitespace, uppercases, and
// applies the fixed-width rule. The returned value is always the best-effort
// canonical form; the error descriptor is non-nil when the result is empty
// (INVALID_KEY) or the wrong width (BAD_LENGTH).
func NormalizeLicenceNumber(raw string) (string, *model.ParseError) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	cleaned = strings.ToUpper(cleaned)

	if cleaned == "" {
		return "", &model.ParseError{
			Field:   "licence_number",
			Reason:  model.ReasonInvalidKey,
			Message: "licence number empty after normalization",
		}
	}
	if len(cleaned) != licenceNumberWidth {
		return cleaned, &model.ParseError{
			Field:   "licence_number",
			Reason:  model.ReasonBadLength,
			Message: fmt.Sprintf("licence number %q has width %d, want %d", cleaned, len(cleaned), licenceNumberWidth),
		}
	}
	return cleaned, nil
}

// ParseClassField splits a compound class/endorsement token (e.g. "DZ") into
// a canonical sorted set of single-character codes. The source marks pending
// reviews with "*", which carries no class information and is dropped.
// Unrecognized codes are kept as opaque values with an error flag so that
// downstream diffing still treats them consistently.
func ParseClassField(raw string) ([]string, *model.ParseError) {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "*", ""))
	if cleaned == "" {
		return nil, nil
	}

	var codes []string
	var unknown []string
	for _, r := range cleaned {
		if r == ' ' {
			continue
		}
		code := string(r)
		codes = append(codes, code)
		if !knownClassCodes[code] {
			unknown = append(unknown, code)
		}
	}

	codes = model.CanonicalClasses(codes)
	if len(unknown) > 0 {
		return codes, &model.ParseError{
			Field:   "classes",
			Reason:  model.ReasonUnknownClass,
			Message: fmt.Sprintf("unrecognized class code(s) %s in %q", strings.Join(unknown, ","), strings.TrimSpace(raw)),
		}
	}
	return codes, nil
}

// ParseDate parses the source's compact YYMMDD date form (always 2000s, per
// the source system) and the ISO form used by stored snapshots. Blank is a
// valid "no date"; malformed non-blank text yields a nil date plus an error
// descriptor so comparison still sees a consistent null.
func ParseDate(raw, field string) (*time.Time, *model.ParseError) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, nil
	}

	if len(cleaned) == 6 && isDigits(cleaned) {
		if t, err := time.Parse("20060102", "20"+cleaned); err == nil {
			return &t, nil
		}
	}
	if t, err := time.Parse("2006-01-02", cleaned); err == nil {
		return &t, nil
	}

	return nil, &model.ParseError{
		Field:   field,
		Reason:  model.ReasonBadDate,
		Message: fmt.Sprintf("unparseable date %q", cleaned),
	}
}

// ParseStatus maps the raw status text to the closed status enumeration and
// returns the trimmed raw text as detail. Unknown codes map to UNKNOWN and
// are never dropped: the detail keeps whatever the source printed.
func ParseStatus(raw string) (model.Status, string) {
	detail := strings.TrimSpace(raw)
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

// NormalizeComments splits a ";"-joined comment field into a lowercased,
// trimmed, sorted list so that ordering and casing drift never reads as a
// change.
func NormalizeComments(text string) []string {
	var items []string
	for _, part := range strings.Split(text, ";") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}
	sort.Strings(items)
	return items
}

// CommentsEqual compares two raw comment fields under normalization
func CommentsEqual(a, b string) bool {
	na, nb := NormalizeComments(a), NormalizeComments(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
