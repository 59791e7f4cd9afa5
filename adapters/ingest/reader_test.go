package ingest

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"reportauto/internal"
	"reportauto/internal/errors"
)

func testReader() *Reader {
	return NewReader(internal.NewLogger(internal.LogLevelError))
}

func TestReadCSV(t *testing.T) {
	data := []byte("Store Name,Amount\nAlpha,\"$1,200\"\nBeta,300\n")
	sheets, err := testReader().Read("sales.csv", data, false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "sales" {
		t.Fatalf("sheets = %v", sheets)
	}
	tbl := sheets[0].Table
	if tbl.Columns[0] != "store_name" || tbl.Columns[1] != "amount" {
		t.Errorf("columns = %v", tbl.Columns)
	}
	if tbl.Rows[0][1] != "$1,200" {
		t.Errorf("quoted cell = %q", tbl.Rows[0][1])
	}
}

func TestReadCSVRaggedRowsArePadded(t *testing.T) {
	data := []byte("a,b,c\n1,2,3\n4,5\n")
	sheets, err := testReader().Read("x.csv", data, false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := sheets[0].Table.Rows[1][2]; got != "" {
		t.Errorf("short row cell = %q", got)
	}
}

func TestReadCSVHeaderOnlyIsIOError(t *testing.T) {
	_, err := testReader().Read("x.csv", []byte("a,b\n"), false)
	if err == nil || !errors.HasCode(err, errors.CodeIOError) {
		t.Fatalf("got %v", err)
	}
}

func TestReadUnsupportedExtension(t *testing.T) {
	_, err := testReader().Read("report.pdf", []byte("junk"), false)
	if err == nil || !errors.HasCode(err, errors.CodeIOError) {
		t.Fatalf("got %v", err)
	}
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range [][]interface{}{
		{"Region", "Amount"},
		{"North", 100},
		{"South", 200},
	} {
		for j, cell := range row {
			ref, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue("Sheet1", ref, cell); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	// Second sheet with its own data, third sheet left empty.
	if _, err := f.NewSheet("Details"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Details", "A1", "Product")
	f.SetCellValue("Details", "A2", "Widget")
	if _, err := f.NewSheet("Empty"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestReadWorkbookSingleSheet(t *testing.T) {
	sheets, err := testReader().Read("book.xlsx", workbookBytes(t), false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "Sheet1" {
		t.Fatalf("sheets = %v", sheets)
	}
	if sheets[0].Table.NumRows() != 2 {
		t.Errorf("rows = %v", sheets[0].Table.Rows)
	}
}

func TestReadWorkbookMultiSheetSkipsEmpty(t *testing.T) {
	sheets, err := testReader().Read("book.xlsx", workbookBytes(t), true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("got %d sheets", len(sheets))
	}
	if sheets[0].Name != "Sheet1" || sheets[1].Name != "Details" {
		t.Errorf("sheet names = %s, %s", sheets[0].Name, sheets[1].Name)
	}
}
