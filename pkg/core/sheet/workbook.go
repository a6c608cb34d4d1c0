package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook parses CSV, XLSX or legacy XLS content into positional rows of
// the first sheet. Format detection is by attempt, not by extension: XLSX
// first, then XLS, then CSV. Cells are returned as display strings so that
// formulas and number formats resolve to what the user sees.
func ReadWorkbook(filename string, content []byte) ([][]string, error) {
	if len(content) == 0 {
		return nil, errors.New("empty file")
	}

	xl, xlErr := excelize.OpenReader(bytes.NewReader(content))
	if xlErr == nil {
		defer xl.Close()
		sheetName := xl.GetSheetName(0)
		rows, err := xl.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}
		if len(rows) == 0 {
			return nil, errors.New("workbook has no rows")
		}
		return rows, nil
	}

	if rows, err := readLegacyXLS(content); err == nil {
		return rows, nil
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	rows, csvErr := r.ReadAll()
	if csvErr != nil {
		return nil, fmt.Errorf("failed to parse %s as xlsx, xls, or csv: %w", filename, xlErr)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv has no rows")
	}
	return rows, nil
}

// readLegacyXLS routes .xls content through a temp file since xlsReader only
// works with file paths.
func readLegacyXLS(content []byte) ([][]string, error) {
	tmp, err := os.CreateTemp("", "upload-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, err
	}
	ws, err := book.GetSheet(0)
	if err != nil || ws == nil {
		return nil, errors.New("failed to get xls sheet")
	}

	var rows [][]string
	for _, xlsRow := range ws.GetRows() {
		var vals []string
		for _, col := range xlsRow.GetCols() {
			vals = append(vals, col.GetString())
		}
		rows = append(rows, vals)
	}
	if len(rows) == 0 {
		return nil, errors.New("xls sheet has no rows")
	}
	return rows, nil
}

// RawRow is one data row keyed by the detected header row. It keeps positional
// cells as well, since total-row filtering looks at the first column regardless
// of what that column is named.
type RawRow struct {
	headers []string
	cells   []string
	index   map[string]int
}

// Get resolves a cell by header name: exact match first, then a
// case-insensitive trimmed match. AI-suggested header names may differ in case
// or whitespace from the literal sheet headers, so every schema field lookup
// goes through here.
func (r RawRow) Get(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	if i, ok := r.index[header]; ok {
		return r.cell(i), true
	}
	want := strings.ToLower(strings.TrimSpace(header))
	for h, i := range r.index {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return r.cell(i), true
		}
	}
	return "", false
}

// First returns the leftmost cell value.
func (r RawRow) First() string {
	if len(r.cells) == 0 {
		return ""
	}
	return r.cells[0]
}

// Map returns the row as a header->value map, used for LLM sample payloads.
// Cells under empty or duplicate headers are dropped.
func (r RawRow) Map() map[string]string {
	m := make(map[string]string, len(r.index))
	for h, i := range r.index {
		m[h] = r.cell(i)
	}
	return m
}

func (r RawRow) cell(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// RowsToRecords re-keys the rows below headerIdx using that row as the field
// names. Rows that are entirely empty are skipped.
func RowsToRecords(rows [][]string, headerIdx int) ([]string, []RawRow) {
	if headerIdx < 0 || headerIdx >= len(rows) {
		return nil, nil
	}

	headers := make([]string, len(rows[headerIdx]))
	index := make(map[string]int, len(headers))
	for i, h := range rows[headerIdx] {
		h = strings.TrimSpace(h)
		headers[i] = h
		if h == "" {
			continue
		}
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var out []RawRow
	for _, cells := range rows[headerIdx+1:] {
		if allEmpty(cells) {
			continue
		}
		out = append(out, RawRow{headers: headers, cells: cells, index: index})
	}
	return headers, out
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
