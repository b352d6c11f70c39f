package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalClasses(t *testing.T) {
	assert.Equal(t, []string{"D", "Z"}, CanonicalClasses([]string{"Z", "D", "Z", ""}))
	assert.Empty(t, CanonicalClasses(nil))
}

func TestClassesEqual(t *testing.T) {
	assert.True(t, ClassesEqual([]string{"D", "Z"}, []string{"D", "Z"}))
	assert.False(t, ClassesEqual([]string{"D"}, []string{"D", "Z"}))
	assert.False(t, ClassesEqual([]string{"D"}, []string{"Z"}))
	assert.True(t, ClassesEqual(nil, nil))
}

func TestFormatLicenceNumber(t *testing.T) {
	assert.Equal(t, "A1234-56789-0123X", FormatLicenceNumber("A1234567890123X"))
	assert.Equal(t, "ABC123", FormatLicenceNumber("ABC123"), "off-width values pass through")
}

func TestRecordSetAddDisplacement(t *testing.T) {
	set := NewRecordSet(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	first := &LicenceRecord{LicenceNumber: "A1234567890123X"}
	second := &LicenceRecord{LicenceNumber: "A1234567890123X"}

	assert.Nil(t, set.Add(first))
	assert.Same(t, first, set.Add(second), "displaced record is handed back")
	assert.Same(t, second, set.Get("A1234567890123X"))
	assert.Equal(t, 1, set.Len())
}

func TestRecordSetKeysSorted(t *testing.T) {
	set := NewRecordSet(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	for _, l := range []string{"C0000000000003X", "A0000000000001X", "B0000000000002X"} {
		set.Add(&LicenceRecord{LicenceNumber: l})
	}
	assert.Equal(t, []string{"A0000000000001X", "B0000000000002X", "C0000000000003X"}, set.Keys())
}

func TestUnlicensedCount(t *testing.T) {
	set := NewRecordSet(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	set.Add(&LicenceRecord{LicenceNumber: "A0000000000001X", Status: StatusValid})
	set.Add(&LicenceRecord{LicenceNumber: "B0000000000002X", Status: StatusSuspended})
	set.Add(&LicenceRecord{LicenceNumber: "C0000000000003X", Status: StatusUnknown})
	assert.Equal(t, 2, set.UnlicensedCount())
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusValid, StatusSuspended, StatusExpired, StatusUnknown} {
		assert.Equal(t, s, StatusFromString(s.String()))
	}
	assert.Equal(t, StatusUnknown, StatusFromString("whatever"))
}
