// Package sheet reads the tabular dataset that drives a generation run and
// writes published file references back into it.
//
// The dataset contract is one row per output document: a required "filename"
// column, any number of angle-bracket token columns, an optional "file"
// column that receives the published reference, and arbitrary other columns
// that are ignored.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	pdfgen "github.com/tinkertanker/googlepdfgen"
)

// Sentinel errors for dataset operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrEmptyDataset      = errors.New("dataset has no header row")
	ErrNoFileColumn      = errors.New("dataset has no file column")
	ErrWritebackFormat   = errors.New("writeback requires an xlsx dataset")
)

// Dataset is the parsed source spreadsheet.
type Dataset struct {
	Path    string
	Headers []string
	Rows    []pdfgen.Row
}

// Read loads a dataset, dispatching on the file extension.
// Supported: .xlsx/.xlsm (first sheet) and .csv.
func Read(path string) (*Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readExcel(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q (want .xlsx or .csv)", ErrUnsupportedFormat, ext)
	}
}

// readExcel reads the first sheet of a workbook.
func readExcel(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyDataset
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return fromRecords(path, records)
}

// readCSV reads a comma-separated dataset.
func readCSV(path string) (*Dataset, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided dataset path
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are tolerated, missing cells read as ""

	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %w", err)
		}
		records = append(records, record)
	}
	return fromRecords(path, records)
}

// fromRecords converts raw header+data records into Rows, keeping only the
// filename and token columns. Fully empty records are skipped; short records
// read missing cells as empty strings.
func fromRecords(path string, records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	// Trailing blank lines are a spreadsheet artifact, not data. Interior
	// blanks are kept so row indexes stay aligned with worksheet rows for
	// writeback; they surface as missing-filename failures in the manifest.
	data := records[1:]
	for len(data) > 0 && isEmptyRecord(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	ds := &Dataset{Path: path, Headers: headers}
	for _, record := range data {
		row := pdfgen.Row{
			Index:  len(ds.Rows),
			Values: make(map[string]string),
		}
		for i, header := range headers {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			switch {
			case header == pdfgen.FilenameColumn:
				row.Filename = strings.TrimSpace(value)
			case pdfgen.IsTokenColumn(header):
				row.Values[header] = value
			}
			// Everything else, including the "file" output column, is ignored.
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// isEmptyRecord reports whether every cell is blank.
func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteFileRefs writes each successful entry's published reference into the
// dataset's "file" column, matching rows by their dataset position. Only
// xlsx workbooks support writeback; the file is saved in place.
func WriteFileRefs(path string, entries []pdfgen.Entry) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
	default:
		return fmt.Errorf("%w: got %q", ErrWritebackFormat, ext)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ErrEmptyDataset
	}
	sheetName := sheets[0]

	records, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", sheetName, err)
	}
	if len(records) == 0 {
		return ErrEmptyDataset
	}

	fileCol := -1
	for i, header := range records[0] {
		if strings.TrimSpace(header) == pdfgen.FileColumn {
			fileCol = i + 1 // excelize columns are 1-based
			break
		}
	}
	if fileCol < 0 {
		return fmt.Errorf("%w: add a %q header to receive references", ErrNoFileColumn, pdfgen.FileColumn)
	}

	for _, e := range entries {
		if !e.Success || e.File == "" {
			continue
		}
		// Data rows start below the header; RowIndex is zero-based.
		cell, err := excelize.CoordinatesToCellName(fileCol, e.RowIndex+2)
		if err != nil {
			return fmt.Errorf("locating cell for row %d: %w", e.RowIndex, err)
		}
		if err := f.SetCellStr(sheetName, cell, e.File); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
