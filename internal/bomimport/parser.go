// Package bomimport parses uploaded BOM files into line items. It accepts
// CSV and XLSX spreadsheets with flexible header naming and an optional YAML
// sourcing profile that adjusts the import.
package bomimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/apperr"
)

// column identifies a recognized BOM field.
type column int

const (
	colUnknown column = iota
	colMPN
	colPartNumber
	colQuantity
	colManufacturer
	colDescription
)

// headerAliases maps normalized header cells to columns. Normalization
// lowercases and strips spaces, underscores and dots, so "Part Number",
// "part_number" and "PartNumber" all land on the same column.
var headerAliases = map[string]column{
	"mpn":                    colMPN,
	"manufacturerpartnumber": colMPN,
	"mfrpartnumber":          colMPN,
	"mfgpartnumber":          colMPN,
	"partnumber":             colPartNumber,
	"partno":                 colPartNumber,
	"pn":                     colPartNumber,
	"sku":                    colPartNumber,
	"quantity":               colQuantity,
	"qty":                    colQuantity,
	"manufacturer":           colManufacturer,
	"mfr":                    colManufacturer,
	"mfg":                    colManufacturer,
	"brand":                  colManufacturer,
	"description":            colDescription,
	"desc":                   colDescription,
	"partdescription":        colDescription,
}

// Parse reads a BOM file and returns its line items. The format is chosen by
// the filename extension; only .csv and .xlsx are supported.
func Parse(r io.Reader, filename string) ([]transport.BomLineItem, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, apperr.BadRequest(fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename)))
	}
}

// ParseCSV parses a CSV BOM. The first row must be a header; column order is
// free and unrecognized columns are ignored.
func ParseCSV(r io.Reader) ([]transport.BomLineItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "failed to parse CSV file", err)
	}

	return rowsToItems(rows)
}

// ParseXLSX parses an XLSX BOM from the first sheet of the workbook.
func ParseXLSX(r io.Reader) ([]transport.BomLineItem, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "failed to open XLSX file", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.BadRequest("XLSX file contains no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "failed to read XLSX rows", err)
	}

	return rowsToItems(rows)
}

// rowsToItems converts a header row plus data rows into line items. Quantity
// defaults to 1 when the column is absent or empty. A data row with no MPN,
// part number or description is an error, reported with its 1-based row
// number. Fully blank rows are skipped.
func rowsToItems(rows [][]string) ([]transport.BomLineItem, error) {
	if len(rows) == 0 {
		return nil, apperr.BadRequest("BOM file is empty")
	}

	columns := mapHeader(rows[0])
	if len(columns) == 0 {
		return nil, apperr.BadRequest("BOM file has no recognizable columns (expected MPN, part number, quantity, manufacturer, or description)")
	}

	var items []transport.BomLineItem
	for rowIdx, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		item := transport.BomLineItem{Quantity: 1}
		for cellIdx, cell := range row {
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			switch columns[cellIdx] {
			case colMPN:
				item.MPN = value
			case colPartNumber:
				item.PartNumber = value
			case colManufacturer:
				item.Manufacturer = value
			case colDescription:
				item.Description = value
			case colQuantity:
				qty, err := parseQuantity(value)
				if err != nil {
					return nil, apperr.Validation(fmt.Sprintf("row %d: invalid quantity %q", rowIdx+2, value))
				}
				item.Quantity = qty
			}
		}

		if item.SearchQuery() == "" {
			return nil, apperr.Validation(fmt.Sprintf("row %d: requires an MPN, part number, or description", rowIdx+2))
		}

		item.ID = fmt.Sprintf("item-%d", len(items)+1)
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, apperr.BadRequest("BOM file contains no line items")
	}
	return items, nil
}

// mapHeader resolves each header cell to a column, ignoring unknown cells.
func mapHeader(header []string) map[int]column {
	columns := make(map[int]column)
	for i, cell := range header {
		if col, ok := headerAliases[normalizeHeader(cell)]; ok {
			columns[i] = col
		}
	}
	return columns
}

func normalizeHeader(cell string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "#", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(cell)))
}

// parseQuantity accepts integers and whole-number floats ("100.0"), which
// spreadsheet exports commonly produce.
func parseQuantity(value string) (int, error) {
	if qty, err := strconv.Atoi(value); err == nil {
		if qty < 1 {
			return 0, fmt.Errorf("quantity must be at least 1")
		}
		return qty, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int(f)) || int(f) < 1 {
		return 0, fmt.Errorf("quantity must be a positive integer")
	}
	return int(f), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
