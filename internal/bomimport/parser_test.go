package bomimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"bomsource_backend/platform/apperr"
)

func TestParseCSVWithCanonicalHeaders(t *testing.T) {
	csvData := strings.Join([]string{
		"MPN,Quantity,Manufacturer,Description",
		"STM32F103C8T6,10,STMicroelectronics,ARM Cortex-M3 MCU",
		"GRM188R71H104KA93D,100,Murata,0.1uF 50V X7R 0603",
	}, "\n")

	items, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "item-1" {
		t.Fatalf("expected generated id item-1, got %q", first.ID)
	}
	if first.MPN != "STM32F103C8T6" || first.Quantity != 10 || first.Manufacturer != "STMicroelectronics" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if items[1].Quantity != 100 {
		t.Fatalf("expected quantity 100, got %d", items[1].Quantity)
	}
}

func TestParseCSVHeaderAliasesAndOrder(t *testing.T) {
	csvData := strings.Join([]string{
		"Qty,Part Number,Mfr,Desc",
		"5,LM358,TI,Dual op-amp",
	}, "\n")

	items, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := items[0]
	if item.PartNumber != "LM358" || item.Quantity != 5 || item.Manufacturer != "TI" || item.Description != "Dual op-amp" {
		t.Fatalf("aliases not mapped: %+v", item)
	}
}

func TestParseCSVQuantityDefaultsToOne(t *testing.T) {
	csvData := "MPN\nATMEGA328P-PU\n"

	items, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", items[0].Quantity)
	}
}

func TestParseCSVWholeNumberFloatQuantity(t *testing.T) {
	csvData := "MPN,Qty\nLM7805,25.0\n"

	items, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Quantity != 25 {
		t.Fatalf("expected quantity 25, got %d", items[0].Quantity)
	}
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	csvData := "MPN,Qty\nLM7805,2\n,\nNE555,1\n"

	items, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected blank row skipped, got %d items", len(items))
	}
}

func TestParseCSVRowWithoutIdentifierFailsWithRowNumber(t *testing.T) {
	csvData := "MPN,Qty\nLM7805,2\n,3\n"

	_, err := ParseCSV(strings.NewReader(csvData))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("expected row number in error, got %q", err.Error())
	}
}

func TestParseCSVInvalidQuantityFails(t *testing.T) {
	csvData := "MPN,Qty\nLM7805,many\n"

	_, err := ParseCSV(strings.NewReader(csvData))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseCSVUnrecognizedHeadersFail(t *testing.T) {
	csvData := "Foo,Bar\n1,2\n"

	_, err := ParseCSV(strings.NewReader(csvData))
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request error, got %v", err)
	}
}

func TestParseXLSXFirstSheet(t *testing.T) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	rows := [][]interface{}{
		{"MPN", "Quantity", "Manufacturer"},
		{"STM32F103C8T6", 10, "STMicroelectronics"},
		{"NE555P", 4, "TI"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	items, err := ParseXLSX(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].MPN != "STM32F103C8T6" || items[0].Quantity != 10 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("MPN\nX\n"), "bom.pdf")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request error, got %v", err)
	}
}

func TestParseDispatchesByExtension(t *testing.T) {
	items, err := Parse(strings.NewReader("MPN,Qty\nLM358,2\n"), "BOM.CSV")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}
