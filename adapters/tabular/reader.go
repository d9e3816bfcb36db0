package tabular

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row keyed by header name. Cells are raw trimmed strings;
// typing happens later, during standardization.
type Row map[string]string

// Table is the parsed content of one tabular file.
type Table struct {
	Headers    []string
	Rows       []Row
	SourceFile string
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read parses the file into a Table.
func (r *DataReader) Read() (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readCSV() (*Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged exports happen; pad per-row instead
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

func (r *DataReader) readExcel() (*Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into Table form. Duplicate headers
// keep their first occurrence only; later columns with the same name are
// ignored.
func (r *DataReader) processRows(rows [][]string) (*Table, error) {
	headerRow := rows[0]
	seen := make(map[string]bool, len(headerRow))
	headers := make([]string, 0, len(headerRow))
	keep := make([]bool, len(headerRow))
	for i, header := range headerRow {
		name := strings.TrimSpace(header)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		keep[i] = true
		headers = append(headers, name)
	}

	var dataRows []Row
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(Row, len(headers))
		for j, cell := range row {
			if j >= len(headerRow) || !keep[j] {
				continue
			}
			rowData[strings.TrimSpace(headerRow[j])] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows): %s",
		strings.ToUpper(r.fileType), len(headers), len(dataRows), filepath.Base(r.filePath))

	return &Table{
		Headers:    headers,
		Rows:       dataRows,
		SourceFile: filepath.Base(r.filePath),
	}, nil
}
