package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpreadsheetRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Client Name", "Comments"},
		{"DOE, JANE", "CORRECTIVE LENSES; <AIR HORN> & \"BELLS\""},
		{"ROE, RICK", ""},
	}

	var buf strings.Builder
	require.NoError(t, WriteSpreadsheet(&buf, "Drivers", rows))

	out := buf.String()
	assert.Contains(t, out, `ss:Name="Drivers"`)
	assert.Contains(t, out, `ss:Type="String"`)
	assert.Contains(t, out, "&lt;AIR HORN&gt;", "markup in cell text must be escaped")

	got, err := ReadSpreadsheet(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, rows, got, "empty cells included")
}

func TestReadSpreadsheetMalformed(t *testing.T) {
	_, err := ReadSpreadsheet(strings.NewReader("<Workbook><Row>"))
	require.Error(t, err)
}
