// Package dataset provides the in-memory tabular dataset the pipeline stages
// pass between each other, plus CSV and XLSX load/save.
//
// A Dataset is an ordered sequence of column-keyed rows. Cell values are
// strings; the empty string means the cell is absent. Typed interpretation
// of cells (floats, ints, enums) is the schema validator's job, not the
// dataset's.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is a single column-keyed record.
type Row map[string]string

// Dataset is an ordered tabular dataset.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// New creates an empty dataset with the given column order.
func New(columns ...string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset declares the given column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends the column to the declared order if missing.
func (d *Dataset) EnsureColumn(name string) {
	if !d.HasColumn(name) {
		d.Columns = append(d.Columns, name)
	}
}

// Copy returns a deep copy of the dataset. Mutating the copy's rows never
// touches the original.
func (d *Dataset) Copy() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, 0, len(d.Rows)),
	}
	for _, row := range d.Rows {
		dup := make(Row, len(row))
		for k, v := range row {
			dup[k] = v
		}
		out.Rows = append(out.Rows, dup)
	}
	return out
}

// Append adds a row to the dataset.
func (d *Dataset) Append(row Row) {
	d.Rows = append(d.Rows, row)
}

// Load reads a tabular file, dispatching on the file extension.
// Supported: .csv, .xlsx, .xls.
func Load(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx", ".xls":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q at %s", filepath.Ext(path), path)
	}
}

// Save writes a tabular file, dispatching on the file extension.
func (d *Dataset) Save(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return d.WriteCSV(path)
	case ".xlsx", ".xls":
		return d.WriteXLSX(path, "Sheet1")
	default:
		return fmt.Errorf("unsupported file type %q at %s", filepath.Ext(path), path)
	}
}

// ReadCSV loads a CSV file. The first record is the header.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s has no header row", path)
	}

	return fromRecords(records), nil
}

// WriteCSV writes the dataset to path as a full-overwrite snapshot. Columns
// are written in declared order; cells missing from a row are empty.
func (d *Dataset) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(d.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range d.Rows {
		record := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv %s: %w", path, err)
	}
	return nil
}

// ReadXLSX loads the first sheet of an Excel workbook. The first row is the
// header.
func ReadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}

	return fromRecords(records), nil
}

// WriteXLSX writes the dataset to an Excel workbook with a single named
// sheet.
func (d *Dataset) WriteXLSX(path, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(d.Columns))
	for i, col := range d.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range d.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		record := make([]interface{}, len(d.Columns))
		for j, col := range d.Columns {
			record[j] = row[col]
		}
		if err := f.SetSheetRow(sheetName, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// fromRecords builds a dataset from header + data records. Short records pad
// with empty cells; extra cells beyond the header are dropped.
func fromRecords(records [][]string) *Dataset {
	ds := New(records[0]...)
	for _, record := range records[1:] {
		row := make(Row, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		ds.Append(row)
	}
	return ds
}
