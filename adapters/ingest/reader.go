// Package ingest turns an uploaded CSV or Excel workbook into tables.
// Cells are kept as strings; numeric and date interpretation happens
// later, per analysis, so one column can serve both roles.
package ingest

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"reportauto/domain/table"
	"reportauto/internal"
	"reportauto/internal/errors"
)

// Sheet is one ingested worksheet. CSV uploads produce a single sheet
// named after the file.
type Sheet struct {
	Name  string
	Table *table.Table
}

// Reader decodes uploads by file extension.
type Reader struct {
	log *internal.Logger
}

func NewReader(log *internal.Logger) *Reader {
	return &Reader{log: log.With("Ingest")}
}

// Read decodes the upload into one or more sheets. multiSheet only
// matters for workbooks: when false, just the first sheet is read.
// Every returned sheet has a header row plus at least one data row.
func (r *Reader) Read(filename string, data []byte, multiSheet bool) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return r.readCSV(filename, data)
	case ".xlsx", ".xlsm":
		return r.readWorkbook(filename, data, multiSheet)
	default:
		return nil, errors.IO("unsupported file type: want .csv, .xlsx or .xlsm", nil)
	}
}

func (r *Reader) readCSV(filename string, data []byte) ([]Sheet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged exports are padded during table construction
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IO("failed to parse CSV file", err)
	}
	tbl, err := buildTable(rows)
	if err != nil {
		return nil, err
	}
	r.log.Info("CSV %q ingested (%d columns, %d rows)", filename, len(tbl.Columns), tbl.NumRows())

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return []Sheet{{Name: name, Table: tbl}}, nil
}

func (r *Reader) readWorkbook(filename string, data []byte, multiSheet bool) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.IO("failed to open workbook "+filename, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, errors.IO("workbook has no sheets", nil)
	}
	if !multiSheet {
		names = names[:1]
	}

	var sheets []Sheet
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.IO("failed to read sheet "+name, err)
		}
		tbl, err := buildTable(rows)
		if err != nil {
			if multiSheet && errors.HasCode(err, errors.CodeIOError) {
				// an empty sheet in a multi-sheet workbook is skipped,
				// not fatal
				r.log.Warn("skipping sheet %q: %v", name, err)
				continue
			}
			return nil, err
		}
		r.log.Info("sheet %q ingested (%d columns, %d rows)", name, len(tbl.Columns), tbl.NumRows())
		sheets = append(sheets, Sheet{Name: name, Table: tbl})
	}
	if len(sheets) == 0 {
		return nil, errors.IO("workbook has no usable sheets", nil)
	}
	return sheets, nil
}

func buildTable(rows [][]string) (*table.Table, error) {
	if len(rows) < 2 {
		return nil, errors.IO("file must have a header row and at least one data row", nil)
	}
	tbl := table.New(rows[0], rows[1:])
	if len(tbl.Columns) == 0 {
		return nil, errors.IO("no usable columns in header row", nil)
	}
	return tbl, nil
}
