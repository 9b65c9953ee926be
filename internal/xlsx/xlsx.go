// Package xlsx moves table grids in and out of spreadsheet workbooks.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docdesigner/internal/tablegrid"
)

// ErrNoSheets is returned when a workbook holds nothing to import.
var ErrNoSheets = errors.New("workbook_has_no_sheets")

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// Workbook is an ordered set of sheets.
type Workbook struct {
	Sheets []Sheet
}

// Sheet is a rectangular grid of cell text plus its merged ranges.
type Sheet struct {
	Name string
	Rows [][]string
	// Merges uses zero-based row and column indexes.
	Merges []tablegrid.Span
	// HeaderRow renders the first row in bold.
	HeaderRow bool
}

// Encode writes wb as an XLSX file.
func Encode(wb Workbook) ([]byte, error) {
	if len(wb.Sheets) == 0 {
		return nil, ErrNoSheets
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(0)
	for i, sheet := range wb.Sheets {
		name := SheetName(sheet.Name, i)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, name, sheet); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet) error {
	width := 0
	for r, row := range sheet.Rows {
		if len(row) > width {
			width = len(row)
		}
		for c, value := range row {
			if value == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, ref, value); err != nil {
				return err
			}
		}
	}
	for _, span := range sheet.Merges {
		if span.RowSpan <= 1 && span.ColSpan <= 1 {
			continue
		}
		topLeft, err := excelize.CoordinatesToCellName(span.Col+1, span.Row+1)
		if err != nil {
			return err
		}
		bottomRight, err := excelize.CoordinatesToCellName(span.Col+max(span.ColSpan, 1), span.Row+max(span.RowSpan, 1))
		if err != nil {
			return err
		}
		if err := f.MergeCell(name, topLeft, bottomRight); err != nil {
			return err
		}
	}
	if sheet.HeaderRow && len(sheet.Rows) > 0 && width > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(width, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, style); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads every sheet of an XLSX file. Rows are padded to the widest
// row so every sheet is rectangular.
func Decode(data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Workbook{}, err
	}
	defer func() { _ = f.Close() }()

	var wb Workbook
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return Workbook{}, fmt.Errorf("sheet %s: %w", name, err)
		}
		merges, err := readMerges(f, name)
		if err != nil {
			return Workbook{}, fmt.Errorf("sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rectangular(rows), Merges: merges})
	}
	if len(wb.Sheets) == 0 {
		return Workbook{}, ErrNoSheets
	}
	return wb, nil
}

func readMerges(f *excelize.File, name string) ([]tablegrid.Span, error) {
	cells, err := f.GetMergeCells(name)
	if err != nil {
		return nil, err
	}
	spans := make([]tablegrid.Span, 0, len(cells))
	for _, cell := range cells {
		c1, r1, err := excelize.CellNameToCoordinates(cell.GetStartAxis())
		if err != nil {
			return nil, err
		}
		c2, r2, err := excelize.CellNameToCoordinates(cell.GetEndAxis())
		if err != nil {
			return nil, err
		}
		spans = append(spans, tablegrid.Span{Row: r1 - 1, Col: c1 - 1, RowSpan: r2 - r1 + 1, ColSpan: c2 - c1 + 1})
	}
	return spans, nil
}

func rectangular(rows [][]string) [][]string {
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, width)
		for j, value := range row {
			out[i][j] = strings.TrimSpace(value)
		}
	}
	return out
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// SheetByName returns the first sheet whose name matches case-insensitively.
func (wb Workbook) SheetByName(name string) (Sheet, bool) {
	for _, sheet := range wb.Sheets {
		if strings.EqualFold(sheet.Name, name) {
			return sheet, true
		}
	}
	return Sheet{}, false
}

// SheetName turns name into a legal sheet title, falling back to Sheet<n>.
func SheetName(name string, index int) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

// WriteTable encodes a single table grid as a one-sheet workbook.
func WriteTable(name string, grid [][]string, merges []tablegrid.Span, headerRow bool) ([]byte, error) {
	return Encode(Workbook{Sheets: []Sheet{{Name: name, Rows: grid, Merges: merges, HeaderRow: headerRow}}})
}

// ReadGrid decodes data and returns the grid of the named sheet, or of the
// first sheet when name is empty.
func ReadGrid(data []byte, name string) ([][]string, error) {
	wb, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return wb.Sheets[0].Rows, nil
	}
	sheet, ok := wb.SheetByName(name)
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	return sheet.Rows, nil
}
