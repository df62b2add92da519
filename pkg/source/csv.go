package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raykavin/vitaltrend/pkg/core"
)

var (
	// LogHeader is the column layout written and read for log entries
	LogHeader = []string{"date", "time", "weight", "body_fat", "muscle", "visceral_fat", "sleep", "notes"}

	// JabHeader is the column layout written and read for jabs
	JabHeader = []string{"date", "time", "dose", "notes"}
)

// row gives access to the cells of one record by column name
type row struct {
	line    int
	headers map[string]int
	cells   []string
}

func (r row) get(column string) string {
	index, ok := r.headers[column]
	if !ok || index >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[index])
}

func (r row) float(column string) (core.NullFloat, error) {
	cell := r.get(column)
	if cell == "" {
		return core.Null(), nil
	}

	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return core.Null(), fmt.Errorf("%w: line %d: %s %q", ErrInvalidRecord, r.line, column, cell)
	}
	return core.Float(value), nil
}

func (r row) floats(columns ...string) ([]core.NullFloat, error) {
	values := make([]core.NullFloat, len(columns))
	for i, column := range columns {
		value, err := r.float(column)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// readRows reads a CSV with a header line and checks the required columns
func readRows(reader io.Reader, required ...string) ([]row, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headers := make(map[string]int, len(header))
	for i, name := range header {
		headers[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, column := range required {
		if _, ok := headers[column]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidRecord, column)
		}
	}

	var rows []row
	for line := 2; ; line++ {
		cells, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRecord, line, err)
		}
		rows = append(rows, row{line: line, headers: headers, cells: cells})
	}

	return rows, nil
}

// ReadLogs reads log entries from a CSV with a header line. Columns are
// matched by name; empty cells are absent values.
func ReadLogs(reader io.Reader) ([]core.LogEntry, error) {
	rows, err := readRows(reader, "date")
	if err != nil {
		return nil, err
	}

	entries := make([]core.LogEntry, 0, len(rows))
	for _, r := range rows {
		t, err := ParseTime(r.get("date"), r.get("time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}

		values, err := r.floats("weight", "body_fat", "muscle", "visceral_fat", "sleep")
		if err != nil {
			return nil, err
		}

		entries = append(entries, core.LogEntry{
			Time:        t,
			Weight:      values[0],
			BodyFat:     values[1],
			Muscle:      values[2],
			VisceralFat: values[3],
			Sleep:       values[4],
			Notes:       r.get("notes"),
		})
	}

	return entries, nil
}

// ReadJabs reads jabs from a CSV with a header line. The dose is required.
func ReadJabs(reader io.Reader) ([]core.Jab, error) {
	rows, err := readRows(reader, "date", "dose")
	if err != nil {
		return nil, err
	}

	jabs := make([]core.Jab, 0, len(rows))
	for _, r := range rows {
		t, err := ParseTime(r.get("date"), r.get("time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}

		dose, err := r.float("dose")
		if err != nil {
			return nil, err
		}
		if !dose.Usable() {
			return nil, fmt.Errorf("%w: line %d: missing dose", ErrInvalidRecord, r.line)
		}

		jabs = append(jabs, core.Jab{Time: t, Dose: dose.Float64, Notes: r.get("notes")})
	}

	return jabs, nil
}

// WriteLogs writes log entries in the layout read by ReadLogs
func WriteLogs(writer io.Writer, entries []core.LogEntry) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(LogHeader); err != nil {
		return fmt.Errorf("failed writing CSV header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.Time.Format(core.DateLayout),
			entry.Time.Format("15:04:05"),
			formatCell(entry.Weight),
			formatCell(entry.BodyFat),
			formatCell(entry.Muscle),
			formatCell(entry.VisceralFat),
			formatCell(entry.Sleep),
			entry.Notes,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed writing CSV data: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func formatCell(v core.NullFloat) string {
	if !v.Usable() {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
