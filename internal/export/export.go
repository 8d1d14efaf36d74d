// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package export turns a filtered collection into a downloadable
// spreadsheet. Rows are entities, columns are the designated display fields.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Content types per format.
var contentTypes = map[string]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	return contentTypes[format]
}

// Column is one spreadsheet column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Table is a rendered grid.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// Build projects items through cols.
func Build[T any](sheet string, cols []Column[T], items []T) Table {
	t := Table{Sheet: sheet, Header: make([]string, len(cols)), Rows: make([][]string, 0, len(items))}
	for i, c := range cols {
		t.Header[i] = c.Header
	}
	for _, it := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Value(it)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Filename returns "<name>-YYYYMMDD-HHMMSS.<format>".
func Filename(name, format string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", name, now.Format("20060102-150405"), format)
}

// Write encodes t in format to w.
func Write(w io.Writer, format string, t Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes t as CSV with a UTF-8 byte order mark so spreadsheet
// applications detect the encoding of accented text.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(sanitizeRow(row)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes t as a single-sheet workbook with a bold, frozen header row.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(t.Sheet)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	if len(t.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
		for i := range t.Header {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, col, col, columnWidth(t, i)); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// sheetName trims to Excel's 31 character limit and drops forbidden characters.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		s = "Export"
	}
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}

func columnWidth(t Table, col int) float64 {
	width := len([]rune(t.Header[col]))
	for _, row := range t.Rows {
		if col < len(row) {
			width = max(width, len([]rune(row[col])))
		}
	}
	return float64(min(max(width+2, 8), 60))
}

// sanitizeRow prefixes values that a spreadsheet would evaluate as formulas.
func sanitizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != "" && strings.ContainsRune("=+-@", rune(v[0])) {
			v = "'" + v
		}
		out[i] = v
	}
	return out
}
