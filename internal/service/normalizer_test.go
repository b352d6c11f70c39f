package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

func TestNormalizeLicenceNumber(t *testing.T) {
	t.Run("strips separators and uppercases", func(t *testing.T) {
		got, err := NormalizeLicenceNumber("a1234-56789-0123x")
		require.Nil(t, err)
		assert.Equal(t, "A1234567890123X", got)
	})

	t.Run("equivalent inputs produce the same canonical form", func(t *testing.T) {
		a, errA := NormalizeLicenceNumber("A1234-56789-0123X")
		b, errB := NormalizeLicenceNumber(" a12 3456789\t0123x ")
		require.Nil(t, errA)
		require.Nil(t, errB)
		assert.Equal(t, a, b)
	})

	t.Run("empty after normalization is an invalid key", func(t *testing.T) {
		got, err := NormalizeLicenceNumber("  --  ")
		assert.Empty(t, got)
		require.NotNil(t, err)
		assert.Equal(t, model.ReasonInvalidKey, err.Reason)
	})

	t.Run("wrong width keeps best-effort value with a length error", func(t *testing.T) {
		got, err := NormalizeLicenceNumber("abc-123")
		assert.Equal(t, "ABC123", got)
		require.NotNil(t, err)
		assert.Equal(t, model.ReasonBadLength, err.Reason)
	})
}

func TestParseClassField(t *testing.T) {
	t.Run("splits compound token into sorted set", func(t *testing.T) {
		got, err := ParseClassField("ZD")
		require.Nil(t, err)
		assert.Equal(t, []string{"D", "Z"}, got)
	})

	t.Run("drops the pending-review star", func(t *testing.T) {
		got, err := ParseClassField("DZ*")
		require.Nil(t, err)
		assert.Equal(t, []string{"D", "Z"}, got)
	})

	t.Run("blank field means no classes, no error", func(t *testing.T) {
		got, err := ParseClassField("   ")
		assert.Nil(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown code is kept as opaque value with error flag", func(t *testing.T) {
		got, err := ParseClassField("DQ")
		assert.Equal(t, []string{"D", "Q"}, got)
		require.NotNil(t, err)
		assert.Equal(t, model.ReasonUnknownClass, err.Reason)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		got, err := ParseClassField("DDZ")
		require.Nil(t, err)
		assert.Equal(t, []string{"D", "Z"}, got)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("compact YYMMDD form", func(t *testing.T) {
		got, err := ParseDate("260315", "expiry_date")
		require.Nil(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("stored ISO form", func(t *testing.T) {
		got, err := ParseDate("2026-03-15", "expiry_date")
		require.Nil(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 2026, got.Year())
	})

	t.Run("blank is a valid null", func(t *testing.T) {
		got, err := ParseDate("      ", "expiry_date")
		assert.Nil(t, got)
		assert.Nil(t, err)
	})

	t.Run("garbage is null plus an error", func(t *testing.T) {
		got, err := ParseDate("9X9X9X", "expiry_date")
		assert.Nil(t, got)
		require.NotNil(t, err)
		assert.Equal(t, model.ReasonBadDate, err.Reason)
		assert.Equal(t, "expiry_date", err.Field)
	})

	t.Run("impossible calendar date is an error", func(t *testing.T) {
		got, err := ParseDate("261345", "expiry_date")
		assert.Nil(t, got)
		require.NotNil(t, err)
	})
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want model.Status
	}{
		{"LICENCED", model.StatusValid},
		{"LICENSED", model.StatusValid},
		{"LICENCE SUSPENDED", model.StatusSuspended},
		{"EXPIRED", model.StatusExpired},
		{"SOMETHING ELSE", model.StatusUnknown},
		{"", model.StatusUnknown},
	}
	for _, tc := range cases {
		status, detail := ParseStatus("  " + tc.raw + "  ")
		assert.Equal(t, tc.want, status, "raw %q", tc.raw)
		assert.Equal(t, tc.raw, detail, "detail must keep the trimmed source text")
	}
}

func TestCommentsEqual(t *testing.T) {
	t.Run("ordering and casing drift is not a change", func(t *testing.T) {
		assert.True(t, CommentsEqual("Corrective Lenses; Air Horn", "air horn; corrective lenses"))
	})

	t.Run("different comment sets differ", func(t *testing.T) {
		assert.False(t, CommentsEqual("corrective lenses", "corrective lenses; air horn"))
	})

	t.Run("blank equals blank", func(t *testing.T) {
		assert.True(t, CommentsEqual("", "  ;  "))
	})
}
