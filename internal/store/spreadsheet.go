package store

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Excel-2003 SpreadsheetML is the interchange format the back-office tooling
// understands, for both stored snapshots and loader batch files. Emission is
// done by hand because encoding/xml cannot round-trip the prefixed ss:
// attributes the consumers expect; reading walks decoder tokens and matches
// on local names, which ignores the prefixes entirely.

const workbookOpen = `<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"` +
	` xmlns:o="urn:schemas-microsoft-com:office:office"` +
	` xmlns:x="urn:schemas-microsoft-com:office:excel"` +
	` xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet"` +
	` xmlns:html="http://www.w3.org/TR/REC-html40">`

// WriteSpreadsheet emits one worksheet of string cells
func WriteSpreadsheet(w io.Writer, sheetName string, rows [][]string) error {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(workbookOpen)
	b.WriteString("\n")
	fmt.Fprintf(&b, "  <Worksheet ss:Name=%q>\n    <Table>\n", sheetName)

	for _, row := range rows {
		b.WriteString("      <Row>\n")
		for _, cell := range row {
			b.WriteString(`        <Cell><Data ss:Type="String">`)
			if err := xml.EscapeText(&b, []byte(cell)); err != nil {
				return fmt.Errorf("failed to escape cell: %w", err)
			}
			b.WriteString("</Data></Cell>\n")
		}
		b.WriteString("      </Row>\n")
	}

	b.WriteString("    </Table>\n  </Worksheet>\n</Workbook>\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

// ReadSpreadsheet parses the first worksheet back into rows of string cells
func ReadSpreadsheet(r io.Reader) ([][]string, error) {
	decoder := xml.NewDecoder(r)

	var rows [][]string
	var row []string
	var cell strings.Builder
	inData := false
	inRow := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Row":
				inRow = true
				row = nil
			case "Cell":
				if inRow {
					cell.Reset()
				}
			case "Data":
				if inRow {
					inData = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Data":
				inData = false
			case "Cell":
				if inRow {
					row = append(row, cell.String())
					cell.Reset()
				}
			case "Row":
				if inRow {
					rows = append(rows, row)
				}
				inRow = false
			}
		case xml.CharData:
			if inData {
				cell.Write(t)
			}
		}
	}

	return rows, nil
}
