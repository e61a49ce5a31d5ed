// Package importer reads manual reminders from CSV uploads.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/payreminder/internal/encoding"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

var dateLayouts = []string{"02-01-2006", "02.01.2006", "02/01/2006", time.DateOnly}

// Row is a parsed data row and its 1-based line in the file.
type Row struct {
	Line   int
	Params reminder.CreateParams
}

// RowError explains why a data row was rejected.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// Parse reads a semicolon or comma separated file in any supported encoding.
// Rows that cannot be read are reported and skipped; the rest are returned.
func Parse(r io.Reader) ([]Row, []RowError, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = detectComma(string(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, nil, fmt.Errorf("no matching layout found: expected columns due_date, amount and description")
	}

	parsed, rowErrs := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)

	return parsed, rowErrs, nil
}

// detectComma picks ';' unless the first line only uses ','.
func detectComma(data string) rune {
	first, _, _ := strings.Cut(data, "\n")
	if !strings.Contains(first, ";") && strings.Contains(first, ",") {
		return ','
	}

	return ';'
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows converts data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Row, []RowError) {
	var (
		out  []Row
		errs []RowError
	)

	for i, row := range rows {
		line := headerRowNum + i + 2 // 1-based, skipping header

		if blank(row) {
			continue
		}

		params, err := parseRow(p, cols, row)
		if err != nil {
			errs = append(errs, RowError{Line: line, Reason: err.Error()})
			continue
		}

		out = append(out, Row{Line: line, Params: params})
	}

	return out, errs
}

func parseRow(p *Profile, cols colIndex, row []string) (reminder.CreateParams, error) {
	var params reminder.CreateParams

	due, err := ParseDate(cellValue(row, cols.get(p.DueDateCol)))
	if err != nil {
		return params, err
	}

	amountStr := cellValue(row, cols.get(p.AmountCol))
	if amountStr == "" {
		return params, fmt.Errorf("missing amount")
	}

	amount, err := ParseAmount(amountStr)
	if err != nil {
		return params, fmt.Errorf("invalid amount %q", amountStr)
	}

	params.DueDate = due
	params.Amount = amount
	params.Description = cellValue(row, cols.get(p.DescCol))
	params.Currency = cellValue(row, cols.get(p.CurrencyCol))

	params.Type = reminder.TypeOther
	if t := cellValue(row, cols.get(p.TypeCol)); t != "" {
		params.Type = reminder.Type(strings.ToLower(t))
	}

	if s := cellValue(row, cols.get(p.DaysBeforeCol)); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return params, fmt.Errorf("invalid days before %q", s)
		}

		params.ReminderDaysBefore = &days
	}

	return params, nil
}

// ParseDate accepts day-first dates with '-', '.' or '/' separators, and ISO dates.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing due date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
