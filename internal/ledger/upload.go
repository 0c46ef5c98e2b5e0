package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseUpload reads an uploaded ledger file into header-keyed rows. The
// format is chosen by file extension: .xlsx workbooks are read from their
// first sheet, everything else is treated as CSV with delimiter sniffing
// between comma and semicolon.
func ParseUpload(filename string, data []byte) ([]map[string]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return parseXLSX(data)
	}
	return parseCSV(data)
}

func parseCSV(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffDelimiter(data)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ledger: parse csv: %w", err)
	}
	return assocRows(rows), nil
}

func parseXLSX(data []byte) ([]map[string]string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ledger: open xlsx: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ledger: xlsx has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ledger: read xlsx sheet %s: %w", sheets[0], err)
	}
	return assocRows(rows), nil
}

// assocRows maps data rows onto the first row's headers, DictReader style.
// Cells beyond the header width are ignored, short rows fill with "".
func assocRows(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		assoc := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				assoc[name] = row[i]
			} else {
				assoc[name] = ""
			}
		}
		out = append(out, assoc)
	}
	return out
}

// sniffDelimiter picks semicolon over comma when the first line favours it,
// covering exports from locales where comma is the decimal separator.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
